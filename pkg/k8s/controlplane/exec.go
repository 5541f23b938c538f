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

package controlplane

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
)

// ExecOptions selects the container and streams of an exec call.
type ExecOptions struct {
	// Container defaults to the pod's first container when empty.
	Container string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

// Exec runs command inside a pod and waits for it to finish.
func (c *Client) Exec(ctx context.Context, namespace, pod string, command []string, opts ExecOptions) error {
	if c.restConfig == nil {
		return fmt.Errorf("exec requires a REST config")
	}
	if namespace == "" {
		namespace = c.namespace
	}

	req := c.kube.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: opts.Container,
			Command:   command,
			Stdin:     opts.Stdin != nil,
			Stdout:    opts.Stdout != nil,
			Stderr:    opts.Stderr != nil,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.restConfig, "POST", req.URL())
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}
	if err := executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}); err != nil {
		return fmt.Errorf("exec %q in %s/%s failed: %w", strings.Join(command, " "), namespace, pod, err)
	}
	return nil
}

// Copy uploads the local file src to dst inside the pod. The container needs
// a POSIX shell; tar is not required.
func (c *Client) Copy(ctx context.Context, namespace, pod, src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	var stderr bytes.Buffer
	cmd := []string{"sh", "-c", "cat > " + shellQuote(dst)}
	if err := c.Exec(ctx, namespace, pod, cmd, ExecOptions{Stdin: f, Stderr: &stderr}); err != nil {
		return fmt.Errorf("failed to copy %s to %s:%s: %w: %s", src, pod, dst, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// FileSize returns the size in bytes of path inside the pod.
func (c *Client) FileSize(ctx context.Context, namespace, pod, path string) (int64, error) {
	var stdout, stderr bytes.Buffer
	cmd := []string{"sh", "-c", "wc -c < " + shellQuote(path)}
	if err := c.Exec(ctx, namespace, pod, cmd, ExecOptions{Stdout: &stdout, Stderr: &stderr}); err != nil {
		return 0, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseSize(stdout.String())
}

func parseSize(out string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected size output %q: %w", out, err)
	}
	return n, nil
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
