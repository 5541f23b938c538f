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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const cliTimeFormat = "15:04:05"

// CLIHandler is a slog.Handler producing one operator-facing line per record:
//
//	12:04:05 [SUCCESS] tier applied tier=vector-db duration=4.2s
//
// Level tags are coloured when the output is a terminal.
type CLIHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	styles map[slog.Level]lipgloss.Style
	attrs  []slog.Attr
	group  string
}

// NewCLIHandler creates a CLIHandler writing to out.
func NewCLIHandler(out io.Writer, level slog.Leveler) *CLIHandler {
	r := lipgloss.NewRenderer(out)
	tag := func(color string) lipgloss.Style {
		return r.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	}
	return &CLIHandler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
		styles: map[slog.Level]lipgloss.Style{
			slog.LevelDebug: tag("8"),
			slog.LevelInfo:  tag("12"),
			LevelSuccess:    tag("10"),
			slog.LevelWarn:  tag("11"),
			slog.LevelError: tag("9"),
		},
	}
}

// SetDefaultCLILogger installs a CLIHandler on stderr as the slog default.
func SetDefaultCLILogger(level string) {
	slog.SetDefault(slog.New(NewCLIHandler(os.Stderr, ParseLogLevel(level))))
}

// Enabled implements slog.Handler.
func (h *CLIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *CLIHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(ts.Format(cliTimeFormat))
	buf.WriteByte(' ')
	buf.WriteString(h.renderLevel(r.Level))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, h.group, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// WithAttrs implements slog.Handler.
func (h *CLIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *CLIHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	clone.group = name
	return &clone
}

func (h *CLIHandler) renderLevel(level slog.Level) string {
	label, base := levelLabel(level)
	return h.styles[base].Render("[" + label + "]")
}

func levelLabel(level slog.Level) (string, slog.Level) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", slog.LevelError
	case level >= slog.LevelWarn:
		return "WARN", slog.LevelWarn
	case level >= LevelSuccess:
		return successLabel, LevelSuccess
	case level >= slog.LevelInfo:
		return "INFO", slog.LevelInfo
	default:
		return "DEBUG", slog.LevelDebug
	}
}

func writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(buf, key, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(val)
}
