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

package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// maxErrOutput bounds how much tool output is carried into an error.
const maxErrOutput = 2048

// Builder builds and pushes container images.
type Builder interface {
	// Build builds the image in contextDir and tags it.
	Build(ctx context.Context, contextDir, tag string) error
	// Push uploads a previously built tag to its registry.
	Push(ctx context.Context, tag string) error
}

// runFunc executes a command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandBuilder drives the docker or podman CLI.
type CommandBuilder struct {
	tool     string
	path     string
	platform string
	run      runFunc
}

// NewCommandBuilder locates tool on PATH. platform is passed to build when set.
func NewCommandBuilder(tool, platform string) (*CommandBuilder, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", tool, err)
	}
	return &CommandBuilder{tool: tool, path: path, platform: platform, run: runCommand}, nil
}

// Tool returns the build tool name.
func (b *CommandBuilder) Tool() string {
	return b.tool
}

// Build runs "<tool> build -t <tag> [--platform P] <contextDir>".
func (b *CommandBuilder) Build(ctx context.Context, contextDir, tag string) error {
	args := []string{"build", "-t", tag}
	if b.platform != "" {
		args = append(args, "--platform", b.platform)
	}
	args = append(args, contextDir)
	return b.exec(ctx, args...)
}

// Push runs "<tool> push <tag>".
func (b *CommandBuilder) Push(ctx context.Context, tag string) error {
	return b.exec(ctx, "push", tag)
}

func (b *CommandBuilder) exec(ctx context.Context, args ...string) error {
	slog.Debug("running build tool", "tool", b.tool, "args", strings.Join(args, " "))
	out, err := b.run(ctx, b.path, args...)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w: %s", b.tool, args[0], err, tail(out))
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxErrOutput {
		s = "..." + s[len(s)-maxErrOutput:]
	}
	return s
}
