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

// Package publisher builds and pushes the application's container images.
//
// A Publisher walks the service list in its fixed order and, for each service,
// builds "<registry>/flight-<service>:<version>" from the service's build
// context and pushes it. The first build or push failure aborts the step with
// BUILD_FAILED or PUSH_FAILED; nothing is retried or rolled back.
//
// CommandBuilder implements Builder on top of the docker or podman CLI.
// Optionally, pushed tags are resolved to manifest digests (see WithResolver).
package publisher
