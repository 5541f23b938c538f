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

// Package client builds Kubernetes API clients from a kubeconfig.
//
// Configuration is discovered in this order:
//   - an explicit path (--kubeconfig)
//   - the KUBECONFIG environment variable
//   - ~/.kube/config, when present
//   - the in-cluster service account
//
// Build returns both the typed clientset and the dynamic client, which the
// control plane needs for server-side apply of arbitrary manifests:
//
//	clients, err := client.Build(kubeconfig)
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	pods, err := clients.Kube.CoreV1().Pods("flight-assistant").List(ctx, metav1.ListOptions{})
package client
