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

// Optional stage sizing.
const (
	// SeedRecordLimit is how many dataset records the loader sends.
	SeedRecordLimit = 1000

	// SeedProgressEvery is how often, in records, the loader logs progress.
	SeedProgressEvery = 100

	// ProbeSamples is the number of timed health requests after the initial check.
	ProbeSamples = 10
)

// Cluster-facing names shared by deploy and manage commands.
const (
	// Namespace is the default target namespace.
	Namespace = "flight-assistant"

	// Version is the image tag used when none is given.
	Version = "latest"

	// ImagePrefix prefixes every service repository and most workload names.
	ImagePrefix = "flight-"

	// FieldManager identifies server-side apply requests.
	FieldManager = "flightdeploy"

	// ServicePort is the container port every service listens on.
	ServicePort = 8000
)
