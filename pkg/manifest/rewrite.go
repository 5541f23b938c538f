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

package manifest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/defaults"
	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
)

// imagePattern matches an image field pointing at an application image, with
// or without a registry path in front. Group 1 is everything up to the image
// value, group 2 the service name. The tag stops at whitespace, a comment,
// a quote or a YAML flow delimiter.
var imagePattern = regexp.MustCompile(`(\bimage:[ \t]+)(?:[^\s#"',\[\]{}]*/)?` +
	regexp.QuoteMeta(defaults.ImagePrefix) + `([A-Za-z0-9._-]+):[^\s#"',\[\]{}]+`)

// FileChange reports the outcome of rewriting one manifest file.
type FileChange struct {
	Path         string `json:"path" yaml:"path"`
	Replacements int    `json:"replacements" yaml:"replacements"`
	Changed      bool   `json:"changed" yaml:"changed"`
}

// Rewrite points every application image field in text at target's registry
// and version. All other bytes are preserved. Rewrite is idempotent.
func Rewrite(text []byte, target config.Target) []byte {
	out, _ := rewrite(text, target)
	return out
}

func rewrite(text []byte, target config.Target) ([]byte, int) {
	n := len(imagePattern.FindAllIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	registry := strings.TrimSuffix(target.Registry, "/")
	repl := "${1}" + escapeReplacement(registry) + "/" + defaults.ImagePrefix + "${2}:" +
		escapeReplacement(target.Version)
	return imagePattern.ReplaceAll(text, []byte(repl)), n
}

// escapeReplacement protects literal '$' in user input from expansion.
func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// RewriteDir rewrites the *.yaml and *.yml files directly inside dir.
// Only files whose content changes are written back, keeping their mode.
func RewriteDir(ctx context.Context, dir string, target config.Target) ([]FileChange, error) {
	return walk(ctx, dir, target, true)
}

// Preview reports what RewriteDir would change without writing anything.
func Preview(ctx context.Context, dir string, target config.Target) ([]FileChange, error) {
	return walk(ctx, dir, target, false)
}

func walk(ctx context.Context, dir string, target config.Target, write bool) ([]FileChange, error) {
	files, err := manifestFiles(dir)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeRewriteFailed,
			"failed to list manifests", err, map[string]any{"path": dir})
	}

	changes := make([]FileChange, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return changes, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return changes, rewriteError(path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return changes, rewriteError(path, err)
		}

		out, n := rewrite(data, target)
		change := FileChange{Path: path, Replacements: n, Changed: string(out) != string(data)}
		if change.Changed && write {
			if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
				return changes, rewriteError(path, err)
			}
		}
		slog.Debug("manifest processed",
			"path", path, "replacements", n, "changed", change.Changed, "written", write && change.Changed)
		changes = append(changes, change)
	}
	return changes, nil
}

func manifestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func rewriteError(path string, err error) error {
	return apperrors.WrapWithContext(apperrors.ErrCodeRewriteFailed,
		"failed to rewrite manifest "+path, err, map[string]any{"path": path})
}
