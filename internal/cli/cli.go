// Package cli implements the heatguard-cli commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/heatguard-service/internal/config"
)

// Context is shared by every command's Run method.
type Context struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

// readInput reads a file, or stdin when path is "-".
func (c *Context) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes to a file, or stdout when path is "" or "-".
func (c *Context) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := c.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // fixtures and bulletins are not secrets
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.Logger.Info("wrote output", "path", path, "bytes", len(data))
	return nil
}

// CLI is the heatguard-cli command tree.
type CLI struct {
	LogLevel string `help:"Log level for diagnostics on stderr." enum:"debug,info,warn,error" default:"warn"`

	Plan    PlanCmd    `cmd:"" help:"Build a bulletin from a forecast document."`
	Genmock GenmockCmd `cmd:"" help:"Write a deterministic diurnal forecast fixture."`
	Table   struct {
		Validate TableValidateCmd `cmd:"" help:"Check that a schedule table covers every role and risk level."`
		Dump     TableDumpCmd     `cmd:"" help:"Write the built-in schedule table as YAML."`
	} `cmd:"" help:"Inspect the role schedule table."`
}
