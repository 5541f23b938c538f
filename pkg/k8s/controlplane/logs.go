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
	"bufio"
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"
)

// LogOptions selects which pod logs are read.
type LogOptions struct {
	// Follow keeps streaming until ctx is cancelled.
	Follow bool
	// TailLines limits output to the last N lines; zero means all.
	TailLines int64
	// Prefix is written before every line when set.
	Prefix string
}

// Logs copies the logs of pod to w line by line.
func (c *Client) Logs(ctx context.Context, namespace, pod string, w io.Writer, opts LogOptions) error {
	if namespace == "" {
		namespace = c.namespace
	}
	podOpts := &corev1.PodLogOptions{Follow: opts.Follow}
	if opts.TailLines > 0 {
		podOpts.TailLines = ptr.To(opts.TailLines)
	}

	stream, err := c.kube.CoreV1().Pods(namespace).GetLogs(pod, podOpts).Stream(ctx)
	if err != nil {
		return fmt.Errorf("failed to stream logs of %s/%s: %w", namespace, pod, err)
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if opts.Prefix != "" {
			fmt.Fprintf(w, "%s %s\n", opts.Prefix, scanner.Text())
		} else {
			fmt.Fprintln(w, scanner.Text())
		}
	}
	return scanner.Err()
}
