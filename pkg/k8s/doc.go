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

// Package k8s groups the Kubernetes integration of flightdeploy.
//
// # Sub-packages
//
// client: builds the typed and dynamic API clients from a kubeconfig
//
//	clients, err := client.Build(kubeconfig)
//
// controlplane: the operations the deployment pipeline and the manage
// command run against a cluster
//
//	cp, err := controlplane.NewFromKubeconfig(kubeconfig, "flight-assistant")
//	if err != nil {
//	    return err
//	}
//	resources, err := cp.Apply(ctx, "k8s/vector-db.yaml")
//
// # Architecture
//
// Clients are built once per command invocation and passed down explicitly.
// Nothing in these packages keeps process-wide state, so tests substitute
// k8s.io/client-go/kubernetes/fake and k8s.io/client-go/dynamic/fake.
//
// Callers that only need a subset of the control plane depend on small
// interfaces such as deploy.Cluster and deploy.StatusReader rather than on
// *controlplane.Client.
package k8s
