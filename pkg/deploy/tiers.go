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

import "path/filepath"

// GateSpec names the workload a tier waits for.
type GateSpec struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

// CRDRef names an API kind that must be served for a tier to apply.
type CRDRef struct {
	GroupVersion string `json:"groupVersion" yaml:"groupVersion"`
	Kind         string `json:"kind" yaml:"kind"`
}

// Tier is a group of manifest files applied together.
type Tier struct {
	Name string
	// Files must exist.
	Files []string
	// OptionalFiles are applied when present.
	OptionalFiles []string
	// Gate, when set, must report ready before the next tier is applied.
	Gate *GateSpec
	// RequiresCRD, when set, is probed right before the tier; the tier is
	// skipped when the kind is not served.
	RequiresCRD *CRDRef
}

// ServiceMonitorCRD is the kind the monitoring tier depends on.
var ServiceMonitorCRD = CRDRef{GroupVersion: "monitoring.coreos.com/v1", Kind: "ServiceMonitor"}

// DefaultTiers returns the application tiers in dependency order.
func DefaultTiers(manifestDir string) []Tier {
	file := func(name string) string { return filepath.Join(manifestDir, name) }
	gated := func(name string) Tier {
		return Tier{
			Name:  name,
			Files: []string{file(name + ".yaml")},
			Gate:  &GateSpec{Kind: "Deployment", Name: name},
		}
	}

	frontend := gated("console-frontend")
	frontend.OptionalFiles = []string{file("ingress.yaml")}

	return []Tier{
		{
			Name:          "namespace",
			Files:         []string{file("namespace.yaml"), file("configmap.yaml")},
			OptionalFiles: []string{file("secrets.yaml")},
		},
		gated("vector-db"),
		gated("rag-service"),
		gated("llm-service"),
		frontend,
		{
			Name:        "monitoring",
			Files:       []string{file("monitoring.yaml")},
			RequiresCRD: &ServiceMonitorCRD,
		},
	}
}
