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

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"k8s.io/client-go/kubernetes"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/deploy"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/k8s/controlplane"
	"github.com/flightdesk/flightdeploy/pkg/publisher"
	"github.com/flightdesk/flightdeploy/pkg/stages"
	ver "github.com/flightdesk/flightdeploy/pkg/version"
)

// MinServerVersion is the oldest API server with server-side apply and
// networking.k8s.io/v1 ingresses.
var MinServerVersion = ver.Server{Major: 1, Minor: 22}

// ControlPlane is the cluster surface the run needs.
type ControlPlane interface {
	deploy.Cluster
	deploy.StatusReader
	ServerVersion(ctx context.Context) (string, error)
}

// Backend bundles the collaborators that need a reachable cluster.
type Backend struct {
	ControlPlane ControlPlane
	Kube         kubernetes.Interface
	Pods         stages.PodAccess
}

// ConnectFunc loads a kubeconfig and returns the cluster collaborators.
type ConnectFunc func(kubeconfig, namespace string) (*Backend, error)

// BuilderFunc locates a build tool.
type BuilderFunc func(tool, platform string) (publisher.Builder, error)

// Connect is the default ConnectFunc backed by client-go.
func Connect(kubeconfig, namespace string) (*Backend, error) {
	cp, err := controlplane.NewFromKubeconfig(kubeconfig, namespace)
	if err != nil {
		return nil, err
	}
	return &Backend{ControlPlane: cp, Kube: cp.Kube(), Pods: stages.NewPodAccess(cp)}, nil
}

// NewBuilder is the default BuilderFunc backed by docker or podman.
func NewBuilder(tool, platform string) (publisher.Builder, error) {
	return publisher.NewCommandBuilder(tool, platform)
}

// checkPrereqs confirms the build tool is on PATH, the kubeconfig loads and
// the API server answers.
func (o *Orchestrator) checkPrereqs(ctx context.Context) error {
	if o.needsBuilder() {
		b, err := o.newBuilder(o.cfg.Builder(), o.cfg.Platform())
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodePrerequisiteMissing,
				"build tool not available", err, map[string]any{"tool": o.cfg.Builder()})
		}
		o.builder = b
		o.log.Debug("build tool found", "tool", o.cfg.Builder())
	}

	backend, err := o.connect(o.cfg.Kubeconfig(), o.cfg.Target().Namespace)
	if err != nil {
		return errors.Wrap(errors.ErrCodePrerequisiteMissing, "kubeconfig could not be loaded", err)
	}
	o.backend = backend

	vctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()
	version, err := backend.ControlPlane.ServerVersion(vctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodePrerequisiteMissing, "cluster control plane not reachable", err)
	}
	if v, perr := ver.ParseServer(version); perr != nil {
		o.log.Debug("unrecognized server version", "version", version, "error", perr)
	} else if !v.AtLeast(MinServerVersion) {
		return errors.NewWithContext(errors.ErrCodePrerequisiteMissing,
			fmt.Sprintf("cluster version %s is older than the required %s", v, MinServerVersion),
			map[string]any{"serverVersion": version})
	}
	o.log.Info("cluster reachable", slog.String("serverVersion", version))
	return nil
}

func (o *Orchestrator) needsBuilder() bool {
	return !o.cfg.SkipBuild() && !o.cfg.DryRun()
}
