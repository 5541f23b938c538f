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

// Package oci composes, validates and resolves container image references.
//
// ImageReference builds the "<registry>/flight-<service>:<version>" tags the
// publisher pushes and rejects anything github.com/distribution/reference
// would not accept. Resolve asks the registry which manifest a tag points to
// using ORAS, reusing Docker credential helpers for authentication:
//
//	ref, err := oci.ImageReference("reg.example.com", "flight-vector-db", "v2.1.0")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Resolve(ctx, ref, oci.ResolveOptions{})
//	if err != nil {
//	    slog.Warn("digest not resolved", "ref", ref, "error", err)
//	}
package oci
