/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/serializer"
)

// Flag constructors return fresh instances: a flag keeps parse state, so
// commands must not share one.

func namespaceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "namespace",
		Aliases: []string{"n"},
		Usage:   "Kubernetes namespace of the application",
		Value:   defaults.Namespace,
		Sources: cli.EnvVars("FLIGHTDEPLOY_NAMESPACE"),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file (overrides KUBECONFIG env)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   "Output format (yaml, json, table)",
		Value:   string(serializer.FormatTable),
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the result to a file instead of stdout",
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Answer yes to every confirmation",
	}
}

// deployFlags are shared by deploy and manage --action deploy.
func deployFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "registry",
			Aliases: []string{"r"},
			Usage:   "Image registry the service images are pushed to",
			Sources: cli.EnvVars("FLIGHTDEPLOY_REGISTRY"),
		},
		&cli.StringFlag{
			Name:    "image-version",
			Usage:   "Image tag to deploy (the positional argument takes precedence)",
			Sources: cli.EnvVars("FLIGHTDEPLOY_VERSION"),
		},
		namespaceFlag(),
		&cli.StringFlag{
			Name:  "manifests",
			Usage: "Directory holding the Kubernetes manifests",
			Value: "k8s",
		},
		&cli.StringFlag{
			Name:  "services-dir",
			Usage: "Directory holding one build context per service",
			Value: "services",
		},
		&cli.StringFlag{
			Name:  "builder",
			Usage: "Container build tool (docker, podman)",
			Value: "docker",
		},
		&cli.StringFlag{
			Name:  "platform",
			Usage: "Target platform passed to the build tool, e.g. linux/amd64",
		},
		yesFlag(),
		&cli.StringFlag{
			Name:  "seed",
			Usage: "Seed sample flight data after deploying (yes, no, ask)",
			Value: "ask",
		},
		&cli.BoolFlag{
			Name:  "seed-reset",
			Usage: "Clear existing flight records before seeding",
		},
		&cli.IntFlag{
			Name:  "seed-limit",
			Usage: "Maximum number of flight records to seed (0 for all)",
			Value: defaults.SeedRecordLimit,
		},
		&cli.FloatFlag{
			Name:  "seed-rate",
			Usage: "Maximum seeded records per second (0 for unlimited)",
		},
		&cli.StringFlag{
			Name:  "dataset",
			Usage: "Path to the flight dataset",
			Value: "data/flights_dataset.json",
		},
		&cli.StringFlag{
			Name:  "probe",
			Usage: "Probe public latency after deploying (yes, no, ask)",
			Value: "ask",
		},
		&cli.BoolFlag{
			Name:  "skip-build",
			Usage: "Do not build or push images; only rewrite and apply manifests",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Validate and preview the manifest rewrite without changing anything",
		},
		&cli.BoolFlag{
			Name:  "resolve-digests",
			Usage: "Resolve the digest of every pushed image from the registry",
		},
		&cli.BoolFlag{
			Name:  "plain-http",
			Usage: "Use plain HTTP when resolving digests (local registries)",
		},
		&cli.BoolFlag{
			Name:  "insecure-tls",
			Usage: "Skip TLS verification when resolving digests",
		},
		&cli.DurationFlag{
			Name:  "gate-timeout",
			Usage: "Maximum wait for each tier to become available",
			Value: defaults.ReadinessTimeout,
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "Readiness poll interval (clamped to 1s-5s)",
			Value: 2 * time.Second,
		},
		&cli.StringFlag{
			Name:  "app-prefix",
			Usage: "Pod name fragment identifying application pods during verification",
			Value: defaults.ImagePrefix,
		},
		&cli.StringFlag{
			Name:  "pushgateway-url",
			Usage: "Prometheus Pushgateway receiving the run metrics",
		},
		kubeconfigFlag(),
		formatFlag(),
		outputFlag(),
	}
}
