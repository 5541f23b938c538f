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
	"log/slog"
	"os"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/k8s/controlplane"
)

const (
	seedService = "vector-db"
	// PodDatasetPath is where the dataset is copied inside the pod. The loader
	// reads the local file; the pod copy is left for operators who reseed
	// from inside the container, and its size confirms the transfer.
	PodDatasetPath = "/tmp/flights_dataset.json"
)

// Tunnel is an open local bridge to a pod port.
type Tunnel interface {
	URL() string
	Close() error
}

// PodAccess is the control-plane surface used by the seeder.
type PodAccess interface {
	RunningPod(ctx context.Context, namespace, selector string) (string, error)
	Copy(ctx context.Context, namespace, pod, src, dst string) error
	FileSize(ctx context.Context, namespace, pod, path string) (int64, error)
	Tunnel(ctx context.Context, namespace, pod string, port uint16) (Tunnel, error)
}

type podAccess struct {
	*controlplane.Client
}

// NewPodAccess adapts a control-plane client to PodAccess.
func NewPodAccess(c *controlplane.Client) PodAccess {
	return podAccess{Client: c}
}

func (p podAccess) Tunnel(ctx context.Context, namespace, pod string, port uint16) (Tunnel, error) {
	return p.PortForward(ctx, namespace, pod, port)
}

// Seeder loads the sample dataset into the running vector database.
type Seeder struct {
	access    PodAccess
	loader    *Loader
	namespace string
	dataset   string
}

// NewSeeder creates a Seeder for namespace reading records from dataset.
func NewSeeder(access PodAccess, namespace, dataset string, loader *Loader) *Seeder {
	if loader == nil {
		loader = NewLoader()
	}
	return &Seeder{access: access, loader: loader, namespace: namespace, dataset: dataset}
}

// Seed copies the dataset into the vector-db pod, confirms it landed and
// then posts the records from the local file through a port bridge. A missing
// pod or a database failing its health check yields OPTIONAL_STAGE_SKIPPED;
// any record or sample search failure yields OPTIONAL_STAGE_WARNING alongside
// the summary.
func (s *Seeder) Seed(ctx context.Context) (*SeedSummary, error) {
	info, err := os.Stat(s.dataset)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageSkipped,
			"dataset not readable", err, map[string]any{"path": s.dataset})
	}

	selector := "app=" + seedService
	pod, err := s.access.RunningPod(ctx, s.namespace, selector)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageSkipped,
			"no running vector-db pod", err, map[string]any{"selector": selector})
	}
	log := slog.With("pod", pod, "namespace", s.namespace)

	log.Info("copying dataset into pod", "path", s.dataset, "bytes", info.Size())
	if err := s.access.Copy(ctx, s.namespace, pod, s.dataset, PodDatasetPath); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageWarning,
			"failed to copy dataset", err, map[string]any{"pod": pod})
	}
	size, err := s.access.FileSize(ctx, s.namespace, pod, PodDatasetPath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageWarning,
			"failed to confirm dataset copy", err, map[string]any{"pod": pod})
	}
	if size != info.Size() {
		return nil, errors.NewWithContext(errors.ErrCodeOptionalStageWarning,
			fmt.Sprintf("dataset copy incomplete: %d of %d bytes", size, info.Size()),
			map[string]any{"pod": pod})
	}

	f, err := os.Open(s.dataset)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOptionalStageSkipped, "dataset not readable", err)
	}
	records, err := ParseRecords(f, s.loader.Limit())
	_ = f.Close()
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageWarning,
			"invalid dataset", err, map[string]any{"path": s.dataset})
	}

	tunnel, err := s.access.Tunnel(ctx, s.namespace, pod, defaults.ServicePort)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageWarning,
			"failed to open port bridge", err, map[string]any{"pod": pod})
	}
	defer func() {
		if cerr := tunnel.Close(); cerr != nil {
			log.Debug("port bridge closed with error", "error", cerr)
		}
	}()

	if err := s.loader.Health(ctx, tunnel.URL()); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapWithContext(errors.ErrCodeOptionalStageSkipped,
			"vector-db health check failed", err, map[string]any{"pod": pod})
	}

	log.Info("loading flight records", "records", len(records), "endpoint", tunnel.URL())
	summary, err := s.loader.Load(ctx, tunnel.URL(), records)
	if err != nil {
		return summary, err
	}
	if summary.Failed > 0 {
		return summary, errors.NewWithContext(errors.ErrCodeOptionalStageWarning,
			fmt.Sprintf("%d of %d flight records failed to load", summary.Failed, summary.Attempted),
			map[string]any{"pod": pod})
	}
	if n := summary.FailedSearches(); n > 0 {
		return summary, errors.NewWithContext(errors.ErrCodeOptionalStageWarning,
			fmt.Sprintf("%d of %d sample searches failed", n, len(summary.Searches)),
			map[string]any{"pod": pod})
	}
	return summary, nil
}
