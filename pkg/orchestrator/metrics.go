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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJob = "flightdeploy"

// Step outcomes recorded by Metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeWarning = "warning"
	OutcomeSkipped = "skipped"
)

// Metrics collects per-run step timings on a private registry so repeated
// runs in one process do not collide.
type Metrics struct {
	registry      *prometheus.Registry
	stateDuration *prometheus.HistogramVec
	stateTotal    *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
}

// NewMetrics creates a Metrics with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		stateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightdeploy_state_duration_seconds",
				Help:    "Time spent in each deployment state",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"state"},
		),
		stateTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdeploy_state_total",
				Help: "Deployment states completed by outcome",
			},
			[]string{"state", "outcome"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdeploy_runs_total",
				Help: "Deployment runs by final state",
			},
			[]string{"final_state"},
		),
	}
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveState records the duration and outcome of one state.
func (m *Metrics) ObserveState(state State, outcome string, d time.Duration) {
	m.stateDuration.WithLabelValues(string(state)).Observe(d.Seconds())
	m.stateTotal.WithLabelValues(string(state), outcome).Inc()
}

// ObserveRun records the final state of a run.
func (m *Metrics) ObserveRun(final State) {
	m.runsTotal.WithLabelValues(string(final)).Inc()
}

// Push sends the collected metrics to a Pushgateway grouped by run id.
func (m *Metrics) Push(ctx context.Context, url, runID string) error {
	return push.New(url, pushJob).
		Gatherer(m.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
}
