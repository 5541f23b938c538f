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

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"success", LevelSuccess},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestLevelSuccessOrdering(t *testing.T) {
	assert.Greater(t, LevelSuccess, slog.LevelInfo)
	assert.Less(t, LevelSuccess, slog.LevelWarn)
}

func TestReplaceLevel(t *testing.T) {
	a := replaceLevel(nil, slog.Any(slog.LevelKey, LevelSuccess))
	assert.Equal(t, "SUCCESS", a.Value.String())

	a = replaceLevel(nil, slog.Any(slog.LevelKey, slog.LevelWarn))
	assert.Equal(t, slog.LevelWarn, a.Value.Any())

	a = replaceLevel(nil, slog.String("msg", "hello"))
	assert.Equal(t, "hello", a.Value.String())
}

func TestCLIHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("applying tier", "tier", "vector-db")
	logger.Log(context.Background(), LevelSuccess, "tier ready", "duration", "4s")
	logger.Warn("monitoring skipped", "reason", "crd not installed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[INFO] applying tier tier=vector-db")
	assert.Contains(t, lines[1], "[SUCCESS] tier ready duration=4s")
	assert.Contains(t, lines[2], `[WARN] monitoring skipped reason="crd not installed"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestCLIHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelDebug)).
		With("run", "abc").
		WithGroup("tier").
		With("name", "rag-service")

	logger.Debug("gate", "ready", true)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] gate")
	assert.Contains(t, out, "run=abc")
	assert.Contains(t, out, "tier.name=rag-service")
	assert.Contains(t, out, "tier.ready=true")
}

func TestCLIHandlerEnabled(t *testing.T) {
	h := NewCLIHandler(&bytes.Buffer{}, slog.LevelWarn)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), LevelSuccess))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestNewStructuredLogger(t *testing.T) {
	logger := NewStructuredLogger("flightdeploy", "v1.0.0", "debug")
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = NewStructuredLogger("flightdeploy", "v1.0.0", "error")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewLogLogger(t *testing.T) {
	l := NewLogLogger(slog.LevelInfo, true)
	require.NotNil(t, l)
}
