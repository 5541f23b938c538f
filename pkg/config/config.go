// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"time"

	"github.com/distribution/reference"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
)

const (
	defaultManifestDir = "k8s"
	defaultServicesDir = "services"
	defaultDataset     = "data/flights_dataset.json"
	defaultBuilder     = "docker"
)

// Config is the immutable configuration of one deployment run.
// Build it with NewConfig and options; it is never modified afterwards.
type Config struct {
	target Target

	manifestDir string
	servicesDir string
	datasetPath string

	builder  string
	platform string

	assumeYes bool
	seed      Choice
	probe     Choice
	seedReset bool
	skipBuild bool
	dryRun    bool

	resolveDigests bool
	plainHTTP      bool
	insecureTLS    bool

	gateTimeout  time.Duration
	pollInterval time.Duration

	seedLimit int
	seedRate  float64

	appPrefix      string
	pushgatewayURL string
	kubeconfig     string
}

// Target returns the deployment target.
func (c *Config) Target() Target { return c.target }

// ManifestDir returns the directory holding the Kubernetes manifests.
func (c *Config) ManifestDir() string { return c.manifestDir }

// ServicesDir returns the directory holding one build context per service.
func (c *Config) ServicesDir() string { return c.servicesDir }

// DatasetPath returns the local sample dataset used by the seed stage.
func (c *Config) DatasetPath() string { return c.datasetPath }

// Builder returns the container build tool (docker or podman).
func (c *Config) Builder() string { return c.builder }

// Platform returns the optional --platform passed to the build tool.
func (c *Config) Platform() string { return c.platform }

// AssumeYes reports whether the deployment confirmation is skipped.
func (c *Config) AssumeYes() bool { return c.assumeYes }

// Seed returns the seed stage decision.
func (c *Config) Seed() Choice { return c.seed }

// Probe returns the latency probe decision.
func (c *Config) Probe() Choice { return c.probe }

// SeedReset reports whether the vector store is cleared before seeding.
func (c *Config) SeedReset() bool { return c.seedReset }

// SkipBuild reports whether the publish step is skipped.
func (c *Config) SkipBuild() bool { return c.skipBuild }

// DryRun reports whether manifest changes are only previewed.
func (c *Config) DryRun() bool { return c.dryRun }

// ResolveDigests reports whether pushed tags are resolved to digests.
func (c *Config) ResolveDigests() bool { return c.resolveDigests }

// PlainHTTP reports whether the registry is reached over plain HTTP.
func (c *Config) PlainHTTP() bool { return c.plainHTTP }

// InsecureTLS reports whether registry TLS verification is skipped.
func (c *Config) InsecureTLS() bool { return c.insecureTLS }

// GateTimeout returns the per-tier readiness timeout.
func (c *Config) GateTimeout() time.Duration { return c.gateTimeout }

// PollInterval returns the readiness poll interval.
func (c *Config) PollInterval() time.Duration { return c.pollInterval }

// SeedLimit returns the maximum number of records loaded.
func (c *Config) SeedLimit() int { return c.seedLimit }

// SeedRate returns the seed requests per second, zero meaning unlimited.
func (c *Config) SeedRate() float64 { return c.seedRate }

// AppPrefix returns the pod name prefix used by verification.
func (c *Config) AppPrefix() string { return c.appPrefix }

// PushgatewayURL returns the Prometheus Pushgateway URL, empty when disabled.
func (c *Config) PushgatewayURL() string { return c.pushgatewayURL }

// Kubeconfig returns the explicit kubeconfig path, empty for discovery.
func (c *Config) Kubeconfig() string { return c.kubeconfig }

// Services returns the ordered service set rooted at ServicesDir.
func (c *Config) Services() []Service { return DefaultServices(c.servicesDir) }

// Validate checks the configuration for a deploy run.
func (c *Config) Validate() error {
	if c.target.Registry == "" {
		return fmt.Errorf("registry is required")
	}
	if c.target.Namespace == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	if c.target.Version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	probe := c.target.Image(defaults.ImagePrefix + "probe")
	named, err := reference.ParseNormalizedNamed(probe)
	if err != nil {
		return fmt.Errorf("invalid registry %q or version %q: %w", c.target.Registry, c.target.Version, err)
	}
	if _, ok := named.(reference.Tagged); !ok {
		return fmt.Errorf("invalid version %q", c.target.Version)
	}
	if c.builder != "docker" && c.builder != "podman" {
		return fmt.Errorf("invalid builder: %s (must be docker or podman)", c.builder)
	}
	if c.gateTimeout <= 0 {
		return fmt.Errorf("gate timeout must be positive")
	}
	if c.seedLimit < 0 {
		return fmt.Errorf("seed limit cannot be negative")
	}
	if c.seedRate < 0 {
		return fmt.Errorf("seed rate cannot be negative")
	}
	return nil
}

// Option configures a Config.
type Option func(*Config)

// WithRegistry sets the image registry.
func WithRegistry(registry string) Option {
	return func(c *Config) { c.target.Registry = registry }
}

// WithNamespace sets the target namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.target.Namespace = namespace }
}

// WithVersion sets the image version tag.
func WithVersion(version string) Option {
	return func(c *Config) { c.target.Version = version }
}

// WithManifestDir sets the manifest directory.
func WithManifestDir(dir string) Option {
	return func(c *Config) { c.manifestDir = dir }
}

// WithServicesDir sets the build context root.
func WithServicesDir(dir string) Option {
	return func(c *Config) { c.servicesDir = dir }
}

// WithDatasetPath sets the sample dataset file.
func WithDatasetPath(path string) Option {
	return func(c *Config) { c.datasetPath = path }
}

// WithBuilder sets the container build tool.
func WithBuilder(builder string) Option {
	return func(c *Config) { c.builder = builder }
}

// WithPlatform sets the build platform.
func WithPlatform(platform string) Option {
	return func(c *Config) { c.platform = platform }
}

// WithAssumeYes skips the deployment confirmation.
func WithAssumeYes(enabled bool) Option {
	return func(c *Config) { c.assumeYes = enabled }
}

// WithSeed sets the seed stage decision.
func WithSeed(choice Choice) Option {
	return func(c *Config) { c.seed = choice }
}

// WithProbe sets the latency probe decision.
func WithProbe(choice Choice) Option {
	return func(c *Config) { c.probe = choice }
}

// WithSeedReset clears the vector store before seeding.
func WithSeedReset(enabled bool) Option {
	return func(c *Config) { c.seedReset = enabled }
}

// WithSkipBuild skips the publish step.
func WithSkipBuild(enabled bool) Option {
	return func(c *Config) { c.skipBuild = enabled }
}

// WithDryRun only previews manifest changes.
func WithDryRun(enabled bool) Option {
	return func(c *Config) { c.dryRun = enabled }
}

// WithResolveDigests resolves pushed tags to registry digests.
func WithResolveDigests(enabled bool) Option {
	return func(c *Config) { c.resolveDigests = enabled }
}

// WithPlainHTTP talks to the registry over plain HTTP.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Config) { c.plainHTTP = enabled }
}

// WithInsecureTLS skips registry TLS verification.
func WithInsecureTLS(enabled bool) Option {
	return func(c *Config) { c.insecureTLS = enabled }
}

// WithGateTimeout sets the per-tier readiness timeout.
func WithGateTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.gateTimeout = d
		}
	}
}

// WithPollInterval sets the readiness poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithSeedLimit sets the number of records loaded by the seed stage.
func WithSeedLimit(n int) Option {
	return func(c *Config) { c.seedLimit = n }
}

// WithSeedRate limits seed requests per second.
func WithSeedRate(rps float64) Option {
	return func(c *Config) { c.seedRate = rps }
}

// WithAppPrefix sets the pod name prefix checked by verification.
func WithAppPrefix(prefix string) Option {
	return func(c *Config) {
		if prefix != "" {
			c.appPrefix = prefix
		}
	}
}

// WithPushgatewayURL enables pushing run metrics.
func WithPushgatewayURL(url string) Option {
	return func(c *Config) { c.pushgatewayURL = url }
}

// WithKubeconfig sets an explicit kubeconfig path.
func WithKubeconfig(path string) Option {
	return func(c *Config) { c.kubeconfig = path }
}

// NewConfig returns a Config with default values.
func NewConfig(options ...Option) *Config {
	c := &Config{
		target: Target{
			Namespace: defaults.Namespace,
			Version:   defaults.Version,
		},
		manifestDir:  defaultManifestDir,
		servicesDir:  defaultServicesDir,
		datasetPath:  defaultDataset,
		builder:      defaultBuilder,
		seed:         ChoiceAsk,
		probe:        ChoiceAsk,
		gateTimeout:  defaults.ReadinessTimeout,
		pollInterval: defaults.ReadinessPollInterval,
		seedLimit:    defaults.SeedRecordLimit,
		appPrefix:    defaults.ImagePrefix,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
