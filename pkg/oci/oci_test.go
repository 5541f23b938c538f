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
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
)

func TestImageReference(t *testing.T) {
	tests := []struct {
		name     string
		registry string
		repo     string
		tag      string
		want     string
		wantErr  bool
	}{
		{"plain host", "reg.example.com", "flight-vector-db", "v2.1.0", "reg.example.com/flight-vector-db:v2.1.0", false},
		{"host with path", "ghcr.io/flightdesk", "flight-rag-service", "latest", "ghcr.io/flightdesk/flight-rag-service:latest", false},
		{"scheme and trailing slash", "https://localhost:5000/", "flight-llm-service", "v1", "localhost:5000/flight-llm-service:v1", false},
		{"empty registry", "", "flight-vector-db", "v1", "", true},
		{"empty tag", "reg.example.com", "flight-vector-db", "", "", true},
		{"uppercase repository", "reg.example.com", "Flight-DB", "v1", "", true},
		{"bad tag", "reg.example.com", "flight-vector-db", "v1 beta", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageReference(tt.registry, tt.repo, tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	ref, err := Parse("reg.example.com:5000/team/flight-vector-db:v2.1.0")
	require.NoError(t, err)
	assert.Equal(t, "reg.example.com:5000", ref.Registry)
	assert.Equal(t, "team/flight-vector-db", ref.Repository)
	assert.Equal(t, "v2.1.0", ref.Tag)
	assert.Equal(t, "reg.example.com:5000/team/flight-vector-db:v2.1.0", ref.String())

	_, err = Parse("reg.example.com/flight-vector-db")
	assert.Error(t, err)
}

func TestStripProtocol(t *testing.T) {
	assert.Equal(t, "ghcr.io", stripProtocol("https://ghcr.io"))
	assert.Equal(t, "localhost:5000", stripProtocol("http://localhost:5000"))
	assert.Equal(t, "ghcr.io", stripProtocol("ghcr.io"))
}

func TestResolve(t *testing.T) {
	const digest = "sha256:6c3c624b58dbbcd3c0dd82b4c53f04194d1247c6eebdaab7c610cf7d66709b3b"

	tests := []struct {
		name      string
		mediaType string
		wantIndex bool
	}{
		{"image manifest", ociv1.MediaTypeImageManifest, false},
		{"image index", ociv1.MediaTypeImageIndex, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v2/flight-vector-db/manifests/v2.1.0" {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", tt.mediaType)
				w.Header().Set("Docker-Content-Digest", digest)
				w.Header().Set("Content-Length", "512")
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			host := strings.TrimPrefix(srv.URL, "http://")
			got, err := Resolve(context.Background(), host+"/flight-vector-db:v2.1.0", ResolveOptions{PlainHTTP: true})
			require.NoError(t, err)
			assert.Equal(t, digest, got.Digest)
			assert.Equal(t, tt.mediaType, got.MediaType)
			assert.Equal(t, tt.wantIndex, got.Index)
			assert.Equal(t, host+"/flight-vector-db:v2.1.0", got.Reference)
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	_, err := Resolve(context.Background(), host+"/flight-vector-db:missing", ResolveOptions{PlainHTTP: true})
	assert.Error(t, err)
}
