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
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/logging"
)

// Forward is an open port bridge from 127.0.0.1 to a pod port.
type Forward struct {
	// LocalPort is the bound port on 127.0.0.1.
	LocalPort uint16
	// RemotePort is the container port.
	RemotePort uint16

	stop      chan struct{}
	done      chan error
	stopOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// URL returns the http base URL of the bridge.
func (f *Forward) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", f.LocalPort)
}

// Close stops forwarding and waits for the forwarder to exit.
func (f *Forward) Close() error {
	f.stopOnce.Do(func() { close(f.stop) })
	f.closeOnce.Do(func() { f.closeErr = <-f.done })
	return f.closeErr
}

// PortForward opens a bridge from a random local port to remotePort on pod.
// It returns once the bridge is ready; call Close to release it. The bridge
// also closes when ctx is cancelled.
func (c *Client) PortForward(ctx context.Context, namespace, pod string, remotePort uint16) (*Forward, error) {
	if c.restConfig == nil {
		return nil, fmt.Errorf("port forwarding requires a REST config")
	}
	if namespace == "" {
		namespace = c.namespace
	}

	reqURL := c.kube.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("portforward").
		URL()

	transport, upgrader, err := spdy.RoundTripperFor(c.restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create SPDY round tripper: %w", err)
	}
	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, reqURL)

	stop := make(chan struct{})
	ready := make(chan struct{})
	out := logging.NewLogLogger(slog.LevelDebug, false).Writer()

	fw, err := portforward.NewOnAddresses(dialer, []string{"127.0.0.1"},
		[]string{fmt.Sprintf("0:%d", remotePort)}, stop, ready, out, out)
	if err != nil {
		return nil, fmt.Errorf("failed to create port forwarder: %w", err)
	}

	f := &Forward{RemotePort: remotePort, stop: stop, done: make(chan error, 1)}
	go func() { f.done <- fw.ForwardPorts() }()

	timer := time.NewTimer(defaults.K8sPortForwardReadyTimeout)
	defer timer.Stop()

	select {
	case <-ready:
	case err := <-f.done:
		f.done <- err
		return nil, fmt.Errorf("port forward to %s/%s:%d failed: %w", namespace, pod, remotePort, err)
	case <-timer.C:
		_ = f.Close()
		return nil, fmt.Errorf("port forward to %s/%s:%d not ready after %s",
			namespace, pod, remotePort, defaults.K8sPortForwardReadyTimeout)
	case <-ctx.Done():
		_ = f.Close()
		return nil, ctx.Err()
	}

	ports, err := fw.GetPorts()
	local, err := localPort(ports, err)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	f.LocalPort = local

	go func() {
		select {
		case <-ctx.Done():
			f.stopOnce.Do(func() { close(f.stop) })
		case <-stop:
		}
	}()

	slog.Debug("port forward ready", "pod", pod, "local", f.LocalPort, "remote", remotePort)
	return f, nil
}

// localPort picks the bound local port from the forwarder's report.
func localPort(ports []portforward.ForwardedPort, err error) (uint16, error) {
	if err != nil {
		return 0, fmt.Errorf("failed to read forwarded port: %w", err)
	}
	if len(ports) == 0 {
		return 0, fmt.Errorf("port forward reported no bound ports")
	}
	return ports[0].Local, nil
}

var _ io.Closer = (*Forward)(nil)
