/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/k8s/controlplane"
	"github.com/flightdesk/flightdeploy/pkg/orchestrator"
	"github.com/flightdesk/flightdeploy/pkg/publisher"
)

// captureConfig runs a command carrying the deploy flags and returns the
// resulting configuration.
func captureConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var got *config.Config
	sub := &cli.Command{
		Name:  "deploy",
		Flags: deployFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := configFromCommand(cmd)
			got = cfg
			return err
		},
	}
	root := &cli.Command{
		Name:     name,
		Flags:    []cli.Flag{&cli.StringFlag{Name: "config"}},
		Commands: []*cli.Command{sub},
	}
	err := root.Run(context.Background(), append([]string{name}, args...))
	return got, err
}

// clearEnv unsets the variables flags read so the host environment does not
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FLIGHTDEPLOY_REGISTRY", "FLIGHTDEPLOY_NAMESPACE", "FLIGHTDEPLOY_VERSION"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestConfigFromFlags(t *testing.T) {
	clearEnv(t)
	cfg, err := captureConfig(t, "deploy",
		"--registry", "registry.example.com/team",
		"--namespace", "staging",
		"--seed", "no",
		"--probe", "yes",
		"--gate-timeout", "45s",
		"--seed-limit", "25",
		"--builder", "podman",
		"--skip-build",
		"v2.0.1")
	require.NoError(t, err)

	assert.Equal(t, config.Target{Registry: "registry.example.com/team", Namespace: "staging", Version: "v2.0.1"}, cfg.Target())
	assert.Equal(t, config.ChoiceNo, cfg.Seed())
	assert.Equal(t, config.ChoiceYes, cfg.Probe())
	assert.Equal(t, 45*time.Second, cfg.GateTimeout())
	assert.Equal(t, 25, cfg.SeedLimit())
	assert.Equal(t, "podman", cfg.Builder())
	assert.True(t, cfg.SkipBuild())
	assert.False(t, cfg.AssumeYes())
}

func TestConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := captureConfig(t, "deploy")
	require.NoError(t, err)
	assert.Equal(t, "flight-assistant", cfg.Target().Namespace)
	assert.Equal(t, "latest", cfg.Target().Version)
	assert.Equal(t, config.ChoiceAsk, cfg.Seed())
	assert.Equal(t, "k8s", cfg.ManifestDir())
}

func TestConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLIGHTDEPLOY_REGISTRY", "env.example.com")
	t.Setenv("FLIGHTDEPLOY_VERSION", "v3.0.0")

	cfg, err := captureConfig(t, "deploy")
	require.NoError(t, err)
	assert.Equal(t, "env.example.com", cfg.Target().Registry)
	assert.Equal(t, "v3.0.0", cfg.Target().Version)

	cfg, err = captureConfig(t, "deploy", "v3.1.0")
	require.NoError(t, err)
	assert.Equal(t, "v3.1.0", cfg.Target().Version)
}

func TestConfigFileUnderFlags(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "flightdeploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`registry: file.example.com
namespace: from-file
version: v1.0.0
seed: "no"
gateTimeout: 2m
`), 0o600))

	cfg, err := captureConfig(t, "--config", path, "deploy", "--namespace", "from-flag")
	require.NoError(t, err)
	assert.Equal(t, "file.example.com", cfg.Target().Registry)
	assert.Equal(t, "from-flag", cfg.Target().Namespace)
	assert.Equal(t, "v1.0.0", cfg.Target().Version)
	assert.Equal(t, config.ChoiceNo, cfg.Seed())
	assert.Equal(t, 2*time.Minute, cfg.GateTimeout())
}

func TestConfigErrors(t *testing.T) {
	clearEnv(t)
	_, err := captureConfig(t, "deploy", "--seed", "sometimes")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

	_, err = captureConfig(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "deploy")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

type stubControlPlane struct {
	applied []string
}

func (c *stubControlPlane) Apply(_ context.Context, path string) ([]controlplane.Resource, error) {
	c.applied = append(c.applied, filepath.Base(path))
	return nil, nil
}

func (c *stubControlPlane) HasResource(context.Context, string, string) (bool, error) {
	return false, nil
}

func (c *stubControlPlane) Available(context.Context, string, string, string) (bool, error) {
	return true, nil
}

func (c *stubControlPlane) ServerVersion(context.Context) (string, error) {
	return "v1.35.0", nil
}

type nopBuilder struct{ calls int }

func (b *nopBuilder) Build(context.Context, string, string) error {
	b.calls++
	return nil
}

func (b *nopBuilder) Push(context.Context, string) error {
	b.calls++
	return nil
}

func runDeployCmd(t *testing.T, stdin string, builderErr error, args ...string) (string, *stubControlPlane, *nopBuilder, error) {
	t.Helper()
	cp := &stubControlPlane{}
	b := &nopBuilder{}
	var out, errOut bytes.Buffer
	cmd := deployCmd(streams{in: strings.NewReader(stdin), out: &out, errOut: &errOut},
		orchestrator.WithConnect(func(string, string) (*orchestrator.Backend, error) {
			return &orchestrator.Backend{ControlPlane: cp, Kube: fake.NewClientset()}, nil
		}),
		orchestrator.WithBuilderFunc(func(string, string) (publisher.Builder, error) {
			if builderErr != nil {
				return nil, builderErr
			}
			return b, nil
		}),
	)
	err := cmd.Run(context.Background(), append([]string{"deploy"}, args...))
	return out.String(), cp, b, err
}

func TestDeployDeclined(t *testing.T) {
	clearEnv(t)
	out, cp, b, err := runDeployCmd(t, "n\n", nil,
		"--registry", "registry.example.com", "--manifests", t.TempDir(), "v1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")
	assert.Empty(t, cp.applied)
	assert.Zero(t, b.calls)
}

func TestDeployPrerequisiteMissing(t *testing.T) {
	clearEnv(t)
	_, cp, _, err := runDeployCmd(t, "", fmt.Errorf("docker not found"),
		"--registry", "registry.example.com", "--yes", "v1.0.0")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePrerequisiteMissing, errors.CodeOf(err))
	assert.Empty(t, cp.applied)
}

func TestDeployInvalidFormat(t *testing.T) {
	_, _, _, err := runDeployCmd(t, "", nil, "--format", "xml", "v1.0.0")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader(" yes \nno"), &out)

	a, err := p.Confirm("first? ")
	require.NoError(t, err)
	assert.Equal(t, "yes", a)

	a, err = p.Confirm("second? ")
	require.NoError(t, err)
	assert.Equal(t, "no", a)

	_, err = p.Confirm("third? ")
	require.Error(t, err)
	assert.Contains(t, out.String(), "first? second? third? ")
}
