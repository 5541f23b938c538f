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

// Package stages implements the optional post-deployment stages: seeding the
// vector database with sample flights, probing public latency through the
// ingress, and a single chat smoke test used by the manage command.
//
// Every stage is best-effort. Failures are reported with the
// OPTIONAL_STAGE_SKIPPED or OPTIONAL_STAGE_WARNING codes, which callers log
// at warn and never treat as fatal.
//
// Seeding:
//
//	loader := stages.NewLoader(stages.WithLimit(1000), stages.WithReset(true))
//	seeder := stages.NewSeeder(stages.NewPodAccess(cp), "flight-assistant",
//	    "data/flights_dataset.json", loader)
//	summary, err := seeder.Seed(ctx)
//
// Probing:
//
//	summary, err := stages.NewProber(kube, "flight-assistant").Probe(ctx)
package stages
