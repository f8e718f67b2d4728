package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/graceserve/internal/infra/buildinfo"
)

// newApp creates the CLI application.
func newApp() *cli.App {
	return &cli.App{
		Name:    "graceserve",
		Usage:   "HTTP service with signal-driven graceful shutdown",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (YAML)",
				EnvVars: []string{"GRACESERVE_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listening port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json, text",
			},
		},
		Action: func(c *cli.Context) error {
			code, err := run(c.Context, options{
				configFile: c.String("config"),
				overrides:  flagOverrides(c),
			})
			if err != nil {
				return err
			}
			if code != 0 {
				return cli.Exit(fmt.Sprintf("shutdown finished with exit status %d", code), code)
			}
			return nil
		},
	}
}

// flagOverrides maps explicitly set flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("port") {
		overrides["server.port"] = c.Int("port")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		overrides["log.format"] = c.String("log-format")
	}
	return overrides
}
