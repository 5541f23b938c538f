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

// Package controlplane is the in-process Kubernetes control plane used by
// flightdeploy.
//
// Client wraps the typed clientset and the dynamic client and provides the
// operations the deployment pipeline needs:
//
//   - Apply: server-side apply of every object in a manifest file
//   - Available: readiness of a Deployment or StatefulSet
//   - HasResource: API discovery probe for optional CRDs
//   - ListPods, RunningPod, Deployments: read-only status queries
//   - Exec, Copy, FileSize: commands and file upload inside a pod
//   - PortForward: local bridge to a pod port
//   - Scale, Logs, DeleteNamespace: day-two management
//
// Manifests are decoded with the apimachinery YAML decoder, mapped to API
// resources through a discovery-backed REST mapper and applied with field
// manager "flightdeploy". Namespaced objects without a namespace land in the
// client's default namespace.
package controlplane
