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

package stages

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/verify"
)

// ProbeSummary holds the latency samples of one probe run.
type ProbeSummary struct {
	URL      string          `json:"url" yaml:"url"`
	Healthy  bool            `json:"healthy" yaml:"healthy"`
	Samples  []time.Duration `json:"samples" yaml:"samples"`
	Failures int             `json:"failures" yaml:"failures"`
	Mean     time.Duration   `json:"mean" yaml:"mean"`
}

// Prober measures request latency through the public ingress.
type Prober struct {
	kube      kubernetes.Interface
	namespace string
	client    *http.Client
	samples   int
	scheme    string
	timeout   time.Duration
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithSamples sets the number of timed requests.
func WithSamples(n int) ProberOption {
	return func(p *Prober) {
		if n > 0 {
			p.samples = n
		}
	}
}

// WithScheme sets the URL scheme used for the ingress host.
func WithScheme(scheme string) ProberOption {
	return func(p *Prober) {
		if scheme != "" {
			p.scheme = scheme
		}
	}
}

// WithProbeClient overrides the HTTP client.
func WithProbeClient(c *http.Client) ProberOption {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

// NewProber creates a Prober for the ingresses of namespace.
func NewProber(kube kubernetes.Interface, namespace string, opts ...ProberOption) *Prober {
	p := &Prober{
		kube:      kube,
		namespace: namespace,
		client:    NewHTTPClient(),
		samples:   defaults.ProbeSamples,
		scheme:    "http",
		timeout:   defaults.ProbeRequestTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ResolveHost returns the first ingress rule host of the namespace, falling
// back to a load balancer hostname or IP.
func (p *Prober) ResolveHost(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()

	list, err := p.kube.NetworkingV1().Ingresses(p.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeOptionalStageSkipped, "failed to list ingresses", err)
	}
	for i := range list.Items {
		for _, r := range list.Items[i].Spec.Rules {
			if r.Host != "" {
				return r.Host, nil
			}
		}
	}
	for i := range list.Items {
		if addr := verify.IngressAddress(&list.Items[i]); addr != "" {
			return addr, nil
		}
	}
	return "", errors.NewWithContext(errors.ErrCodeOptionalStageSkipped,
		"no ingress host or address found", map[string]any{"namespace": p.namespace})
}

// Probe resolves the public host and measures it.
func (p *Prober) Probe(ctx context.Context) (*ProbeSummary, error) {
	host, err := p.ResolveHost(ctx)
	if err != nil {
		return nil, err
	}
	return p.ProbeURL(ctx, p.scheme+"://"+host)
}

// ProbeURL issues one health check and then the timed samples against
// baseURL. Failed samples are logged and excluded from the mean.
func (p *Prober) ProbeURL(ctx context.Context, baseURL string) (*ProbeSummary, error) {
	url := strings.TrimSuffix(baseURL, "/") + healthPath
	summary := &ProbeSummary{URL: url, Samples: make([]time.Duration, 0, p.samples)}

	if _, err := p.get(ctx, url); err != nil {
		slog.Warn("health check failed", "url", url, "error", err)
	} else {
		summary.Healthy = true
		slog.Info("health check passed", "url", url)
	}

	var total time.Duration
	for i := 0; i < p.samples; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		d, err := p.get(ctx, url)
		if err != nil {
			summary.Failures++
			slog.Warn("latency sample failed", "sample", i+1, "error", err)
			continue
		}
		summary.Samples = append(summary.Samples, d)
		total += d
		slog.Debug("latency sample", "sample", i+1, "duration", d)
	}
	if n := len(summary.Samples); n > 0 {
		summary.Mean = total / time.Duration(n)
	}

	slog.Info("latency probe finished", "url", url, "samples", len(summary.Samples),
		"failures", summary.Failures, "mean", summary.Mean)

	if !summary.Healthy || summary.Failures > 0 {
		return summary, errors.NewWithContext(errors.ErrCodeOptionalStageWarning,
			fmt.Sprintf("probe degraded: healthy=%t, %d of %d samples failed", summary.Healthy, summary.Failures, p.samples),
			map[string]any{"url": url})
	}
	return summary, nil
}

func (p *Prober) get(ctx context.Context, url string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	elapsed := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return elapsed, nil
}
