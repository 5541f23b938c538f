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

// Package deploy rolls the application out to the cluster tier by tier.
//
// DefaultTiers lists the tiers in dependency order: namespace and shared
// configuration first, then vector-db, rag-service, llm-service and
// console-frontend, each gated on its Deployment becoming available, and
// finally the monitoring resources, which are only applied when the cluster
// serves the ServiceMonitor kind.
//
// Applier applies the tiers through a Cluster and waits on each gate with a
// Gate, normally a ReadinessGate polling the control plane. The first failure
// stops the rollout and nothing is rolled back.
package deploy
