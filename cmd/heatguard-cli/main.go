package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/couchcryptid/heatguard-service/internal/cli"
	"github.com/couchcryptid/heatguard-service/internal/config"
	"github.com/couchcryptid/heatguard-service/internal/observability"
)

func main() {
	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("heatguard-cli"),
		kong.Description("Plan heat-safety bulletins from hourly forecasts."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = ctx.Run(&cli.Context{
		Config: cfg,
		Logger: observability.NewLoggerTo(os.Stderr, root.LogLevel, "text"),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
