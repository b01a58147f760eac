// predictctl queries the salary prediction service from a terminal.
//
// Usage:
//
//	predictctl options
//	predictctl predict --country Germany --years 7
//	predictctl prompt
//	predictctl ping
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"salary-predictor/internal/config"
	"salary-predictor/internal/observability"
	"salary-predictor/internal/prediction"
)

var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:    "predictctl",
		Usage:   "Developer salary predictions from the command line",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML config file",
				EnvVars: []string{config.EnvConfigFile},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Prediction service base URL (overrides config)",
				EnvVars: []string{config.EnvPredictionBaseURL},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Prediction request timeout (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level (debug, info, warn, error)",
			},
		},

		Before: func(c *cli.Context) error {
			return observability.InitLogger(c.String("log-level"), false)
		},
		After: func(c *cli.Context) error {
			observability.SyncLogger()
			return nil
		},

		Commands: []*cli.Command{
			optionsCommand(),
			predictCommand(),
			promptCommand(),
			pingCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newClient builds the prediction client from config, letting global flags
// win over file and environment settings.
func newClient(c *cli.Context) (*prediction.Client, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	baseURL := cfg.Prediction.BaseURL
	if c.IsSet("base-url") {
		baseURL = c.String("base-url")
	}
	timeout := cfg.Prediction.Timeout
	if c.IsSet("timeout") {
		timeout = c.Duration("timeout")
	}

	return prediction.NewClient(baseURL, prediction.WithTimeout(timeout))
}
