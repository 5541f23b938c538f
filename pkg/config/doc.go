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

// Package config holds the immutable run configuration of flightdeploy.
//
// A Config is assembled once from functional options, typically by the CLI
// from an optional YAML file followed by command line flags, and then passed
// read-only to every pipeline step:
//
//	cfg := config.NewConfig(
//	    config.WithRegistry("reg.example.com"),
//	    config.WithVersion("v2.1.0"),
//	    config.WithSeed(config.ChoiceNo),
//	)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// The package also defines the fixed application service set (DefaultServices)
// and the Choice type used for the optional seed and probe stages.
package config
