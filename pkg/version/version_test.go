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

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServer(t *testing.T) {
	tests := []struct {
		in      string
		want    Server
		wantErr bool
	}{
		{in: "v1.35.0", want: Server{Major: 1, Minor: 35}},
		{in: "1.29", want: Server{Major: 1, Minor: 29}},
		{in: "v1", want: Server{Major: 1}},
		{in: "v1.28.3-gke.1337000", want: Server{Major: 1, Minor: 28, Patch: 3, Suffix: "-gke.1337000"}},
		{in: "v1.30.2+k3s1", want: Server{Major: 1, Minor: 30, Patch: 2, Suffix: "+k3s1"}},
		{in: "", wantErr: true},
		{in: "v1.2.3.4", wantErr: true},
		{in: "1..2", wantErr: true},
		{in: "a.b", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseServer(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAtLeast(t *testing.T) {
	floor := Server{Major: 1, Minor: 22}
	for in, want := range map[string]bool{
		"v1.22.0":       true,
		"v1.35.0-eks-1": true,
		"v2.0.0":        true,
		"v1.21.14":      false,
		"v0.99":         false,
	} {
		v, err := ParseServer(in)
		require.NoError(t, err)
		assert.Equal(t, want, v.AtLeast(floor), in)
	}
}

func TestString(t *testing.T) {
	v := Server{Major: 1, Minor: 28, Patch: 3, Suffix: "-gke.1"}
	assert.Equal(t, "v1.28.3", v.String())
	assert.Contains(t, Info(), Version)
}
