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

// Package defaults provides centralized configuration constants for flightdeploy.
//
// This package defines timeout values, stage sizing, and cluster-facing names
// used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Timeout Categories
//
//   - Readiness gate: per-tier wait and poll interval bounds
//   - Kubernetes timeouts: API round trips, exec/copy, port bridges, cleanup
//   - HTTP client timeouts: outbound requests of seed, probe and smoke test
//   - Optional stage timeouts: per-record and per-probe limits
//
// # Usage
//
//	import "github.com/flightdesk/flightdeploy/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Readiness gate: 300s per tier, polled every 2s (clamped to 1s-5s)
//   - K8s operations: 30s for API calls, 2m for exec/copy
//   - Seed: 20s per record; probe: 10s per request
package defaults
