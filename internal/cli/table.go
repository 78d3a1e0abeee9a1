package cli

import (
	"fmt"

	"github.com/couchcryptid/heatguard-service/internal/config"
	"github.com/couchcryptid/heatguard-service/internal/domain"
)

// TableValidateCmd checks that a schedule table covers every role and risk level.
type TableValidateCmd struct {
	File string `help:"YAML table to check. Defaults to SCHEDULE_TABLE_PATH, then the built-in table." type:"existingfile"`
}

func (c *TableValidateCmd) Run(ctx *Context) error {
	path := c.File
	if path == "" {
		path = ctx.Config.ScheduleTablePath
	}
	t, err := config.LoadScheduleTable(path)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in table"
	}
	_, err = fmt.Fprintf(ctx.Stdout, "%s: ok, %d entries (%d roles x %d risk levels)\n",
		source, len(t.Entries()), len(domain.AllRoles), len(domain.AllRiskCategories))
	return err
}

// TableDumpCmd writes the built-in schedule table as YAML.
type TableDumpCmd struct {
	Out string `help:"Write to this file instead of stdout." type:"path"`
}

func (c *TableDumpCmd) Run(ctx *Context) error {
	data, err := config.DumpScheduleTable(domain.DefaultScheduleTable())
	if err != nil {
		return err
	}
	return ctx.writeOutput(c.Out, data)
}
