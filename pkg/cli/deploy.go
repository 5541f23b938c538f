/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/orchestrator"
	"github.com/flightdesk/flightdeploy/pkg/serializer"
)

func deployCmd(s streams, extra ...orchestrator.Option) *cli.Command {
	return &cli.Command{
		Name:                  "deploy",
		EnableShellCompletion: true,
		Usage:                 "Build, publish and roll out a version of the application",
		ArgsUsage:             "[version]",
		Description: `Runs the full promotion of one version:

  1. Check that the build tool, kubeconfig and cluster are available
  2. Ask for confirmation (skipped with --yes)
  3. Build and push vector-db, rag-service, llm-service and console-frontend
  4. Rewrite the image references in the manifest directory
  5. Apply the tiers in order, waiting for each Deployment to become available
  6. Verify pod health (advisory)
  7. Optionally seed sample data and probe latency

The first build, push, rewrite, apply or readiness failure stops the run and
exits 1. Declining the confirmation exits 0 without changing anything.

# Examples

Deploy a release:
  flightdeploy deploy v1.4.0 --registry registry.example.com/team

Unattended, without the optional stages:
  flightdeploy deploy v1.4.0 --registry registry.example.com/team --yes --seed no --probe no

Promote already published images:
  flightdeploy deploy v1.4.0 --registry registry.example.com/team --skip-build`,
		Flags: deployFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDeploy(ctx, cmd, s, extra...)
		},
	}
}

func runDeploy(ctx context.Context, cmd *cli.Command, s streams, extra ...orchestrator.Option) error {
	format, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --format", err)
	}
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	opts := append([]orchestrator.Option{
		orchestrator.WithConfirmer(newLinePrompter(s.in, s.errOut)),
	}, extra...)
	summary, runErr := orchestrator.New(cfg, opts...).Run(ctx)

	if summary != nil {
		w := newOutputWriter(cmd, format, s)
		defer closeWriter(w)
		if err := w.Serialize(ctx, summary); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return runErr
}

// newOutputWriter writes to --output when it is set and to s.out otherwise.
func newOutputWriter(cmd *cli.Command, format serializer.Format, s streams) *serializer.Writer {
	if path := cmd.String("output"); path != "" {
		return serializer.NewFileWriterOrStdout(format, path)
	}
	return serializer.NewWriter(format, s.out)
}

func closeWriter(w *serializer.Writer) {
	if err := w.Close(); err != nil {
		slog.Warn("failed to close output file", "error", err)
	}
}

// configFromCommand layers the --config file under the flags that were
// given on the command line or through the environment.
func configFromCommand(cmd *cli.Command) (*config.Config, error) {
	var opts []config.Option

	if path := cmd.String("config"); path != "" {
		f, err := config.LoadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --config", err)
		}
		fileOpts, err := f.Options()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --config", err)
		}
		opts = append(opts, fileOpts...)
	}

	str := func(flag string, with func(string) config.Option) {
		if cmd.IsSet(flag) {
			opts = append(opts, with(cmd.String(flag)))
		}
	}
	boolean := func(flag string, with func(bool) config.Option) {
		if cmd.IsSet(flag) {
			opts = append(opts, with(cmd.Bool(flag)))
		}
	}

	str("registry", config.WithRegistry)
	str("image-version", config.WithVersion)
	str("namespace", config.WithNamespace)
	str("manifests", config.WithManifestDir)
	str("services-dir", config.WithServicesDir)
	str("dataset", config.WithDatasetPath)
	str("builder", config.WithBuilder)
	str("platform", config.WithPlatform)
	str("app-prefix", config.WithAppPrefix)
	str("pushgateway-url", config.WithPushgatewayURL)
	str("kubeconfig", config.WithKubeconfig)

	if v := cmd.Args().First(); v != "" {
		opts = append(opts, config.WithVersion(v))
	}

	boolean("yes", config.WithAssumeYes)
	boolean("seed-reset", config.WithSeedReset)
	boolean("skip-build", config.WithSkipBuild)
	boolean("dry-run", config.WithDryRun)
	boolean("resolve-digests", config.WithResolveDigests)
	boolean("plain-http", config.WithPlainHTTP)
	boolean("insecure-tls", config.WithInsecureTLS)

	for flag, with := range map[string]func(config.Choice) config.Option{
		"seed":  config.WithSeed,
		"probe": config.WithProbe,
	} {
		if !cmd.IsSet(flag) {
			continue
		}
		c, err := config.ParseChoice(cmd.String(flag))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --"+flag, err)
		}
		opts = append(opts, with(c))
	}

	if cmd.IsSet("seed-limit") {
		opts = append(opts, config.WithSeedLimit(cmd.Int("seed-limit")))
	}
	if cmd.IsSet("seed-rate") {
		opts = append(opts, config.WithSeedRate(cmd.Float("seed-rate")))
	}
	if cmd.IsSet("gate-timeout") {
		opts = append(opts, config.WithGateTimeout(cmd.Duration("gate-timeout")))
	}
	if cmd.IsSet("poll-interval") {
		opts = append(opts, config.WithPollInterval(cmd.Duration("poll-interval")))
	}

	return config.NewConfig(opts...), nil
}
