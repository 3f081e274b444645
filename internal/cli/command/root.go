package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/calliope-space/telemhist/internal/cli/connection"
	"github.com/calliope-space/telemhist/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "telemhist-cli",
		Usage:   "Telemetry history management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			CapacityCommand(),
			HistoryCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server link address (e.g., localhost:5170)",
			EnvVars: []string{"TELEMHIST_SERVER"},
			Value:   "localhost:5170",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Request timeout",
			Value:   10 * time.Second,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
	}
}

// dial opens a link connection using the global flags.
func dial(c *cli.Context) (*connection.Client, error) {
	client, err := connection.Dial(c.String("server"), c.Duration("timeout"))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.String("server"), err)
	}
	return client, nil
}
