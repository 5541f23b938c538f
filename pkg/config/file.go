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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of the defaults accepted by --config.
// Unset fields leave the built-in defaults in place; command line flags
// override anything set here.
//
//	registry: reg.example.com
//	namespace: flight-assistant
//	version: v2.1.0
//	seed: "no"
//	gateTimeout: 5m
type File struct {
	Registry       string   `yaml:"registry,omitempty"`
	Namespace      string   `yaml:"namespace,omitempty"`
	Version        string   `yaml:"version,omitempty"`
	ManifestDir    string   `yaml:"manifestDir,omitempty"`
	ServicesDir    string   `yaml:"servicesDir,omitempty"`
	Dataset        string   `yaml:"dataset,omitempty"`
	Builder        string   `yaml:"builder,omitempty"`
	Platform       string   `yaml:"platform,omitempty"`
	Seed           *Choice  `yaml:"seed,omitempty"`
	Probe          *Choice  `yaml:"probe,omitempty"`
	SeedLimit      *int     `yaml:"seedLimit,omitempty"`
	SeedRate       *float64 `yaml:"seedRate,omitempty"`
	GateTimeout    string   `yaml:"gateTimeout,omitempty"`
	PollInterval   string   `yaml:"pollInterval,omitempty"`
	AppPrefix      string   `yaml:"appPrefix,omitempty"`
	PushgatewayURL string   `yaml:"pushgatewayURL,omitempty"`
	ResolveDigests bool     `yaml:"resolveDigests,omitempty"`
	PlainHTTP      bool     `yaml:"plainHTTP,omitempty"`
	InsecureTLS    bool     `yaml:"insecureTLS,omitempty"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

// Options converts the file into Config options. Durations are validated here.
func (f *File) Options() ([]Option, error) {
	var opts []Option
	addString := func(v string, fn func(string) Option) {
		if v != "" {
			opts = append(opts, fn(v))
		}
	}
	addString(f.Registry, WithRegistry)
	addString(f.Namespace, WithNamespace)
	addString(f.Version, WithVersion)
	addString(f.ManifestDir, WithManifestDir)
	addString(f.ServicesDir, WithServicesDir)
	addString(f.Dataset, WithDatasetPath)
	addString(f.Builder, WithBuilder)
	addString(f.Platform, WithPlatform)
	addString(f.AppPrefix, WithAppPrefix)
	addString(f.PushgatewayURL, WithPushgatewayURL)

	if f.Seed != nil {
		opts = append(opts, WithSeed(*f.Seed))
	}
	if f.Probe != nil {
		opts = append(opts, WithProbe(*f.Probe))
	}
	if f.SeedLimit != nil {
		opts = append(opts, WithSeedLimit(*f.SeedLimit))
	}
	if f.SeedRate != nil {
		opts = append(opts, WithSeedRate(*f.SeedRate))
	}
	if f.GateTimeout != "" {
		d, err := time.ParseDuration(f.GateTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid gateTimeout %q: %w", f.GateTimeout, err)
		}
		opts = append(opts, WithGateTimeout(d))
	}
	if f.PollInterval != "" {
		d, err := time.ParseDuration(f.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid pollInterval %q: %w", f.PollInterval, err)
		}
		opts = append(opts, WithPollInterval(d))
	}
	if f.ResolveDigests {
		opts = append(opts, WithResolveDigests(true))
	}
	if f.PlainHTTP {
		opts = append(opts, WithPlainHTTP(true))
	}
	if f.InsecureTLS {
		opts = append(opts, WithInsecureTLS(true))
	}
	return opts, nil
}
