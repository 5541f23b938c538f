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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
)

// Reference is a parsed, tagged container image reference.
type Reference struct {
	// Registry is the registry host, e.g. "reg.example.com" or "localhost:5000".
	Registry string
	// Repository is the repository path below the host, e.g. "team/flight-vector-db".
	Repository string
	// Tag is the image tag, e.g. "v2.1.0".
	Tag string
}

// String returns "registry/repository:tag".
func (r *Reference) String() string {
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// ImageReference composes and validates "<registry>/<repository>:<tag>".
// The registry may carry a path ("reg.example.com/team") and an http(s) scheme,
// which is dropped.
func ImageReference(registry, repository, tag string) (string, error) {
	registry = strings.TrimSuffix(stripProtocol(registry), "/")
	if registry == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidRequest, "registry is required")
	}
	if tag == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required")
	}
	ref := fmt.Sprintf("%s/%s:%s", registry, repository, tag)
	if _, err := Parse(ref); err != nil {
		return "", err
	}
	return ref, nil
}

// Parse splits a fully qualified, tagged image reference into its parts.
func Parse(image string) (*Reference, error) {
	named, err := reference.ParseNormalizedNamed(stripProtocol(image))
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
			"invalid image reference", err, map[string]any{"image": image})
	}
	tagged, ok := named.(reference.Tagged)
	if !ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"image reference has no tag", map[string]any{"image": image})
	}
	return &Reference{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
		Tag:        tagged.Tag(),
	}, nil
}

// stripProtocol removes an http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}
