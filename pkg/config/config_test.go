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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "flight-assistant", cfg.Target().Namespace)
	assert.Equal(t, "latest", cfg.Target().Version)
	assert.Empty(t, cfg.Target().Registry)
	assert.Equal(t, "docker", cfg.Builder())
	assert.Equal(t, ChoiceAsk, cfg.Seed())
	assert.Equal(t, ChoiceAsk, cfg.Probe())
	assert.Equal(t, 300*time.Second, cfg.GateTimeout())
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 1000, cfg.SeedLimit())
	assert.Equal(t, "flight-", cfg.AppPrefix())
	assert.False(t, cfg.AssumeYes())
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithRegistry("reg.example.com"),
		WithVersion("v2.1.0"),
		WithNamespace("staging"),
		WithAssumeYes(true),
		WithSeed(ChoiceYes),
		WithProbe(ChoiceNo),
		WithGateTimeout(10*time.Second),
		WithGateTimeout(0),
		WithBuilder("podman"),
	)

	assert.Equal(t, Target{Registry: "reg.example.com", Namespace: "staging", Version: "v2.1.0"}, cfg.Target())
	assert.True(t, cfg.AssumeYes())
	assert.Equal(t, ChoiceYes, cfg.Seed())
	assert.Equal(t, ChoiceNo, cfg.Probe())
	assert.Equal(t, 10*time.Second, cfg.GateTimeout())
	assert.Equal(t, "podman", cfg.Builder())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{"valid", []Option{WithRegistry("reg.example.com"), WithVersion("v2.1.0")}, false},
		{"registry with port and path", []Option{WithRegistry("localhost:5000/team")}, false},
		{"missing registry", nil, true},
		{"uppercase registry path", []Option{WithRegistry("reg.example.com/Team")}, true},
		{"invalid version", []Option{WithRegistry("reg.example.com"), WithVersion("v1 beta")}, true},
		{"empty namespace", []Option{WithRegistry("reg.example.com"), WithNamespace("")}, true},
		{"bad builder", []Option{WithRegistry("reg.example.com"), WithBuilder("kaniko")}, true},
		{"negative seed limit", []Option{WithRegistry("reg.example.com"), WithSeedLimit(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultServices(t *testing.T) {
	services := DefaultServices("services")
	require.Len(t, services, 4)

	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
		assert.Equal(t, "flight-"+s.Name, s.Repository)
		assert.Equal(t, 8000, s.Port)
		assert.Equal(t, "app="+s.Name, s.Selector())
	}
	assert.Equal(t, []string{"vector-db", "rag-service", "llm-service", "console-frontend"}, names)
	assert.Equal(t, filepath.Join("services", "vector-db")+string(filepath.Separator), services[0].ContextDir)
}

func TestLookupService(t *testing.T) {
	s, ok := LookupService("llm-service")
	require.True(t, ok)
	assert.Equal(t, "flight-llm-service", s.Repository)

	_, ok = LookupService("redis")
	assert.False(t, ok)
}

func TestTargetImage(t *testing.T) {
	tgt := Target{Registry: "reg.example.com/", Version: "v2.1.0"}
	assert.Equal(t, "reg.example.com/flight-vector-db:v2.1.0", tgt.Image("flight-vector-db"))
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    Choice
		wantErr bool
	}{
		{"", ChoiceAsk, false},
		{"ask", ChoiceAsk, false},
		{"YES", ChoiceYes, false},
		{"y", ChoiceYes, false},
		{"no", ChoiceNo, false},
		{"false", ChoiceNo, false},
		{"maybe", ChoiceAsk, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChoice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flightdeploy.yaml")
	content := `registry: reg.example.com
version: v2.1.0
seed: "no"
probe: "yes"
seedLimit: 50
gateTimeout: 90s
resolveDigests: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)

	opts, err := f.Options()
	require.NoError(t, err)

	cfg := NewConfig(opts...)
	assert.Equal(t, "reg.example.com", cfg.Target().Registry)
	assert.Equal(t, "v2.1.0", cfg.Target().Version)
	assert.Equal(t, "flight-assistant", cfg.Target().Namespace)
	assert.Equal(t, ChoiceNo, cfg.Seed())
	assert.Equal(t, ChoiceYes, cfg.Probe())
	assert.Equal(t, 50, cfg.SeedLimit())
	assert.Equal(t, 90*time.Second, cfg.GateTimeout())
	assert.True(t, cfg.ResolveDigests())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: sometimes\n"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)

	f := &File{GateTimeout: "forever"}
	_, err = f.Options()
	assert.Error(t, err)
}
