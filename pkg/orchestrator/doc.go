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

// Package orchestrator runs a deployment as an explicit state machine:
//
//	init -> prereq-check -> confirm -> publish -> rewrite -> apply -> verify
//	     -> [seed] -> [probe] -> done
//
// failed is reachable from every non-terminal state and cancelled ends a run
// whose confirmation was declined. Publish, rewrite and apply failures are
// fatal; verification and the optional seed and probe stages only warn.
//
// Each run carries a UUID that is attached to its log lines and used to
// group its metrics when they are pushed to a Pushgateway.
//
//	o := orchestrator.New(cfg, orchestrator.WithConfirmer(prompter))
//	summary, err := o.Run(ctx)
package orchestrator
