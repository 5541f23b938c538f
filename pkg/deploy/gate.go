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
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
)

// Readiness is the outcome of one tier's gate.
type Readiness string

const (
	// ReadinessReady means the gated workload became available.
	ReadinessReady Readiness = "Ready"
	// ReadinessTimedOut means the workload did not become available in time.
	ReadinessTimedOut Readiness = "TimedOut"
	// ReadinessApplyFailed means the tier's manifests were rejected.
	ReadinessApplyFailed Readiness = "ApplyFailed"
	// ReadinessNotGated means the tier has no gate.
	ReadinessNotGated Readiness = "NotGated"
)

// StatusReader reports whether a workload is available.
type StatusReader interface {
	Available(ctx context.Context, kind, name, namespace string) (bool, error)
}

// ReadinessGate blocks until a workload is available or a timeout expires.
type ReadinessGate struct {
	reader   StatusReader
	interval time.Duration
}

// NewReadinessGate creates a gate polling reader every interval. The interval
// is clamped to [1s, 5s]; zero selects the 2s default.
func NewReadinessGate(reader StatusReader, interval time.Duration) *ReadinessGate {
	return &ReadinessGate{reader: reader, interval: ClampInterval(interval)}
}

// ClampInterval bounds a poll interval to the supported range.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return defaults.ReadinessPollInterval
	case d < defaults.ReadinessMinPollInterval:
		return defaults.ReadinessMinPollInterval
	case d > defaults.ReadinessMaxPollInterval:
		return defaults.ReadinessMaxPollInterval
	default:
		return d
	}
}

// Interval returns the effective poll interval.
func (g *ReadinessGate) Interval() time.Duration {
	return g.interval
}

// WaitReady polls until kind/name in namespace is available. It returns
// ReadinessReady, or ReadinessTimedOut with a READINESS_TIMEOUT error once
// timeout elapses. When ctx is cancelled it returns ctx.Err() without
// polling again.
func (g *ReadinessGate) WaitReady(ctx context.Context, kind, name, namespace string, timeout time.Duration) (Readiness, error) {
	if timeout <= 0 {
		timeout = defaults.ReadinessTimeout
	}
	start := time.Now()
	polls := 0

	err := wait.PollUntilContextTimeout(ctx, g.interval, timeout, true, func(ctx context.Context) (bool, error) {
		polls++
		ok, err := g.reader.Available(ctx, kind, name, namespace)
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest) {
				return false, err
			}
			slog.Debug("availability check failed", "kind", kind, "name", name, "error", err)
			return false, nil
		}
		return ok, nil
	})

	switch {
	case err == nil:
		slog.Debug("gate passed", "kind", kind, "name", name, "polls", polls,
			"elapsed", time.Since(start).Round(time.Millisecond))
		return ReadinessReady, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case wait.Interrupted(err):
		return ReadinessTimedOut, apperrors.NewWithContext(apperrors.ErrCodeReadinessTimeout,
			fmt.Sprintf("%s/%s not available after %s", kind, name, timeout),
			map[string]any{"resource": kind + "/" + name, "namespace": namespace, "timeout": timeout.String()})
	default:
		return "", err
	}
}
