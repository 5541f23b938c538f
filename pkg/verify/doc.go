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

// Package verify produces an advisory health report of a deployed namespace.
//
// Only application pods are judged: a pod counts when its name contains the
// application prefix ("flight-" by default) or one of the configured service
// names. The report is unhealthy when any of them is neither Running nor
// Completed. Services and ingresses are listed for the operator but do not
// affect the verdict.
package verify
