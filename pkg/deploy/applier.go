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

package deploy

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/k8s/controlplane"
	"github.com/flightdesk/flightdeploy/pkg/logging"
)

// Cluster applies manifests and answers discovery questions.
type Cluster interface {
	Apply(ctx context.Context, path string) ([]controlplane.Resource, error)
	HasResource(ctx context.Context, groupVersion, kind string) (bool, error)
}

// Gate waits for a workload to become available.
type Gate interface {
	WaitReady(ctx context.Context, kind, name, namespace string, timeout time.Duration) (Readiness, error)
}

// TierResult records what happened to one tier.
type TierResult struct {
	Tier       string                  `json:"tier" yaml:"tier"`
	Applied    []controlplane.Resource `json:"applied,omitempty" yaml:"applied,omitempty"`
	Readiness  Readiness               `json:"readiness,omitempty" yaml:"readiness,omitempty"`
	Skipped    bool                    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	SkipReason string                  `json:"skipReason,omitempty" yaml:"skipReason,omitempty"`
	Duration   time.Duration           `json:"duration" yaml:"duration"`
}

// Applier rolls tiers out one after another.
type Applier struct {
	cluster   Cluster
	gate      Gate
	tiers     []Tier
	namespace string
	timeout   time.Duration
}

// NewApplier creates an Applier for tiers in namespace. timeout bounds each gate.
func NewApplier(cluster Cluster, gate Gate, tiers []Tier, namespace string, timeout time.Duration) *Applier {
	return &Applier{cluster: cluster, gate: gate, tiers: tiers, namespace: namespace, timeout: timeout}
}

// Apply applies every tier in order. Tier i+1 is not touched until tier i's
// gate reports ready. The first apply failure or gate timeout stops the
// rollout; tiers already applied are left in place.
func (a *Applier) Apply(ctx context.Context) ([]TierResult, error) {
	results := make([]TierResult, 0, len(a.tiers))
	for _, tier := range a.tiers {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := a.applyTier(ctx, tier)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (a *Applier) applyTier(ctx context.Context, tier Tier) (TierResult, error) {
	start := time.Now()
	res := TierResult{Tier: tier.Name, Readiness: ReadinessNotGated}
	log := slog.With("tier", tier.Name)

	if tier.RequiresCRD != nil {
		if ok, reason := a.crdPresent(ctx, *tier.RequiresCRD); !ok {
			log.Warn("tier skipped", "reason", reason)
			res.Skipped = true
			res.SkipReason = reason
			res.Duration = time.Since(start)
			return res, nil
		}
	}

	log.Info("applying tier")
	files := append([]string{}, tier.Files...)
	for _, f := range tier.OptionalFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			log.Debug("optional manifest absent", "path", f)
			continue
		}
		files = append(files, f)
	}

	for _, f := range files {
		applied, err := a.cluster.Apply(ctx, f)
		res.Applied = append(res.Applied, applied...)
		if err != nil {
			res.Readiness = ReadinessApplyFailed
			res.Duration = time.Since(start)
			if !apperrors.HasCode(err, apperrors.ErrCodeApplyFailed) {
				err = apperrors.WrapWithContext(apperrors.ErrCodeApplyFailed,
					"failed to apply tier "+tier.Name, err, map[string]any{"tier": tier.Name, "path": f})
			}
			log.Error("tier apply failed", "path", f, "error", err)
			return res, err
		}
	}

	if tier.Gate != nil {
		log.Info("waiting for readiness", "resource", tier.Gate.Kind+"/"+tier.Gate.Name, "timeout", a.timeout)
		readiness, err := a.gate.WaitReady(ctx, tier.Gate.Kind, tier.Gate.Name, a.namespace, a.timeout)
		res.Readiness = readiness
		res.Duration = time.Since(start)
		if err != nil {
			if readiness == ReadinessTimedOut {
				log.Error("tier not ready", "resource", tier.Gate.Kind+"/"+tier.Gate.Name, "error", err)
			}
			return res, err
		}
	}

	res.Duration = time.Since(start)
	logging.SuccessContext(ctx, "tier applied", "tier", tier.Name,
		"resources", len(res.Applied), "readiness", string(res.Readiness),
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// crdPresent probes for ref. A failed probe counts as absent.
func (a *Applier) crdPresent(ctx context.Context, ref CRDRef) (bool, string) {
	probeCtx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()

	ok, err := a.cluster.HasResource(probeCtx, ref.GroupVersion, ref.Kind)
	if err != nil {
		return false, "probe for " + ref.Kind + " failed: " + err.Error()
	}
	if !ok {
		return false, ref.GroupVersion + " " + ref.Kind + " not served by the cluster"
	}
	return true, ""
}
