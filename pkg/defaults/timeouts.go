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

package defaults

import "time"

// Readiness gate timing.
const (
	// ReadinessTimeout is the default per-tier wait for a gated resource to become available.
	ReadinessTimeout = 300 * time.Second

	// ReadinessPollInterval is the default delay between availability checks.
	ReadinessPollInterval = 2 * time.Second

	// ReadinessMinPollInterval and ReadinessMaxPollInterval bound user supplied
	// poll intervals so the control plane API is never hammered.
	ReadinessMinPollInterval = 1 * time.Second
	ReadinessMaxPollInterval = 5 * time.Second
)

// Kubernetes timeouts for K8s API operations.
const (
	// K8sAPITimeout bounds single API round trips such as the reachability check.
	K8sAPITimeout = 30 * time.Second

	// K8sExecTimeout bounds a single exec or copy into a pod.
	K8sExecTimeout = 2 * time.Minute

	// K8sPortForwardReadyTimeout is how long to wait for a port bridge to come up.
	K8sPortForwardReadyTimeout = 30 * time.Second

	// K8sCleanupTimeout is the timeout for namespace deletion requests.
	K8sCleanupTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Optional stage timeouts.
const (
	// SeedRecordTimeout bounds one record POST during data seeding.
	SeedRecordTimeout = 20 * time.Second

	// ProbeRequestTimeout bounds one health request of the performance probe.
	ProbeRequestTimeout = 10 * time.Second

	// SmokeChatTimeout bounds the sample chat request of the connectivity test.
	SmokeChatTimeout = 30 * time.Second
)
