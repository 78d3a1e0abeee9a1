package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/couchcryptid/heatguard-service/internal/domain"
)

// PlanCmd builds a bulletin from a forecast document.
type PlanCmd struct {
	File    string `arg:"" help:"Forecast JSON file, or - for stdin." default:"-"`
	Role    string `help:"Role to plan for (outdoor_worker, student, courier, elderly). Overrides the document."`
	Units   string `help:"Display units for heat index values (F or C)." default:"F"`
	Session int    `help:"Session length in minutes. 0 keeps the document or configured default."`
	Color   string `help:"Colorize risk labels." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"Print the bulletin as JSON instead of text." name:"json"`
	Out     string `help:"Write to this file instead of stdout." type:"path"`
}

func (c *PlanCmd) Run(ctx *Context) error {
	units, err := domain.ParseUnits(c.Units)
	if err != nil {
		return err
	}

	data, err := ctx.readInput(c.File)
	if err != nil {
		return err
	}
	doc, err := domain.ParseForecast(data)
	if err != nil {
		return err
	}
	if c.Role != "" {
		doc.Role = c.Role
	}
	if c.Session != 0 {
		doc.SessionMinutes = c.Session
	}

	req, err := doc.Request(ctx.Config.DefaultRole, ctx.Config.HorizonHours)
	if err != nil {
		return err
	}
	engine, err := ctx.Config.BuildEngine()
	if err != nil {
		return err
	}
	b, err := engine.Generate(req)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("bulletin generated", "bulletin_id", b.ID, "peak_risk", b.PeakRisk.Key())

	out, err := c.render(b, units, ctx.Stdout)
	if err != nil {
		return err
	}
	return ctx.writeOutput(c.Out, out)
}

func (c *PlanCmd) render(b domain.Bulletin, units domain.Units, stdout io.Writer) ([]byte, error) {
	if c.JSON {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return nil, fmt.Errorf("encode bulletin: %w", err)
		}
		return buf.Bytes(), nil
	}

	// Files only get color when asked for explicitly.
	w := stdout
	if c.Out != "" && c.Out != "-" {
		w = io.Discard
	}
	return []byte(domain.RenderTextStyled(b, units, riskStyler(w, c.Color))), nil
}
