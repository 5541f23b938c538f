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

// Package version carries build metadata and parses Kubernetes API server
// versions for the minimum-version prerequisite.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var (
	ErrEmptyVersion = errors.New("version string is empty")
	ErrMalformed    = errors.New("malformed version")
)

// Server is a Kubernetes API server version such as "v1.35.0-eks-3025e55".
// Only the numeric release is compared; the vendor suffix is kept for
// display.
type Server struct {
	Major  int    `json:"major" yaml:"major"`
	Minor  int    `json:"minor" yaml:"minor"`
	Patch  int    `json:"patch" yaml:"patch"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Info returns a one-line description of the build.
func Info() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// ParseServer parses "v1", "1.29", "v1.29.3" and vendor forms like
// "v1.28.0-gke.1337000" or "v1.30.2+k3s1". Missing components are zero.
func ParseServer(s string) (Server, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Server{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var out Server
	if i := strings.IndexAny(s, "-+"); i > 0 {
		out.Suffix = s[i:]
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Server{}, fmt.Errorf("%w: %q has more than 3 components", ErrMalformed, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p[0] == '+' {
			return Server{}, fmt.Errorf("%w: component %q", ErrMalformed, p)
		}
		nums[i] = n
	}
	out.Major, out.Minor, out.Patch = nums[0], nums[1], nums[2]
	return out, nil
}

// String renders the release without the vendor suffix.
func (v Server) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 comparing the numeric release of v and o.
func (v Server) Compare(o Server) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is the same release as floor or newer.
func (v Server) AtLeast(floor Server) bool {
	return v.Compare(floor) >= 0
}
