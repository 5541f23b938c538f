/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/flightdesk/flightdeploy/pkg/logging"
	"github.com/flightdesk/flightdeploy/pkg/version"
)

const name = "flightdeploy"

// streams are the terminal handles used by the commands. Prompts go to
// errOut so that out can be piped.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	cmd := newRootCmd(streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr})
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(s streams) *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Staged deployment of the flight assistant to Kubernetes",
		Version: version.Info(),
		Description: `Builds and pushes the service images, rewrites the manifests to the
requested version, applies them tier by tier behind readiness gates and
verifies the result. Optional stages seed sample data and probe latency.`,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, success, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Emit structured JSON logs",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file with defaults for the deploy flags",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			initLogger(cmd.String("log-level"), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			deployCmd(s),
			manageCmd(s),
		},
	}
}

// initLogger installs the default slog logger once flags are parsed.
func initLogger(level string, json bool) {
	if json {
		logging.SetDefaultStructuredLoggerWithLevel(name, version.Version, level)
	} else {
		logging.SetDefaultCLILogger(level)
	}
	slog.Debug("starting",
		"name", name,
		"version", version.Version,
		"commit", version.Commit,
		"date", version.Date,
		"logLevel", level)
}
