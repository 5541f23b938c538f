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

// Package logging provides the slog setup used by flightdeploy.
//
// Two handlers are available. The structured handler writes JSON to stderr with
// module and version attributes on every record, suitable for CI logs:
//
//	logging.SetDefaultStructuredLoggerWithLevel("flightdeploy", "v0.3.0", "info")
//
// The CLI handler writes one short line per record and colours the level tag
// when stderr is a terminal:
//
//	logging.SetDefaultCLILogger("debug")
//	slog.Info("applying tier", "tier", "vector-db")
//	logging.Success("tier ready", "tier", "vector-db")
//
// # Levels
//
// In addition to the slog levels a SUCCESS level (LevelSuccess) sits between
// INFO and WARN. It marks the completion of a pipeline step and renders as
// "SUCCESS" in both handlers.
//
// The LOG_LEVEL environment variable (or --log-level) selects the minimum level.
// Accepted values are debug, info, success, warn, warning and error. Anything
// else falls back to info.
package logging
