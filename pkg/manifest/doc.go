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

// Package manifest retargets the application's Kubernetes manifests at a
// registry and version.
//
// Manifests are treated as opaque text. The only field touched is an image
// reference of the form flight-<service>:<tag>, optionally already prefixed by
// a registry path:
//
//	image: flight-vector-db:old
//
// becomes, for registry reg.example.com and version v2.1.0,
//
//	image: reg.example.com/flight-vector-db:v2.1.0
//
// Indentation, comments and line endings are kept as they are, and running the
// rewrite twice yields the same bytes as running it once.
package manifest
