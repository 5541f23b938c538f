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
	"context"
	"log/slog"
	"time"

	"github.com/flightdesk/flightdeploy/pkg/config"
	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/oci"
)

// Result describes one published image.
type Result struct {
	Service   string `json:"service" yaml:"service"`
	Reference string `json:"reference" yaml:"reference"`
	Digest    string `json:"digest,omitempty" yaml:"digest,omitempty"`
	MediaType string `json:"mediaType,omitempty" yaml:"mediaType,omitempty"`
}

// ResolveFunc looks up the digest of a pushed tag.
type ResolveFunc func(ctx context.Context, image string) (*oci.Resolved, error)

// Publisher builds and pushes the application images one service at a time.
type Publisher struct {
	builder Builder
	resolve ResolveFunc
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithResolver enables digest resolution after each push.
func WithResolver(fn ResolveFunc) Option {
	return func(p *Publisher) { p.resolve = fn }
}

// New creates a Publisher using b.
func New(b Builder, opts ...Option) *Publisher {
	p := &Publisher{builder: b}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Tags returns the image reference of every service for target, in order.
func Tags(services []config.Service, target config.Target) ([]string, error) {
	tags := make([]string, 0, len(services))
	for _, svc := range services {
		ref, err := oci.ImageReference(target.Registry, svc.Repository, target.Version)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
				"invalid image reference for "+svc.Name, err, map[string]any{"service": svc.Name})
		}
		tags = append(tags, ref)
	}
	return tags, nil
}

// Publish builds then pushes each service in order. The first failure stops
// the run; images already pushed stay in the registry.
func (p *Publisher) Publish(ctx context.Context, services []config.Service, target config.Target) ([]Result, error) {
	tags, err := Tags(services, target)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(services))
	for i, svc := range services {
		tag := tags[i]
		errCtx := map[string]any{"service": svc.Name, "tag": tag}

		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		slog.Info("building image", "service", svc.Name, "tag", tag, "context", svc.ContextDir)
		if err := p.builder.Build(ctx, svc.ContextDir, tag); err != nil {
			return results, apperrors.WrapWithContext(apperrors.ErrCodeBuildFailed,
				"failed to build "+tag, err, errCtx)
		}

		slog.Info("pushing image", "service", svc.Name, "tag", tag)
		if err := p.builder.Push(ctx, tag); err != nil {
			return results, apperrors.WrapWithContext(apperrors.ErrCodePushFailed,
				"failed to push "+tag, err, errCtx)
		}

		res := Result{Service: svc.Name, Reference: tag}
		if p.resolve != nil {
			if resolved, rerr := p.resolve(ctx, tag); rerr != nil {
				slog.Warn("digest resolution failed", "tag", tag, "error", rerr)
			} else {
				res.Digest = resolved.Digest
				res.MediaType = resolved.MediaType
				slog.Debug("digest resolved", "tag", tag, "digest", resolved.Digest, "index", resolved.Index)
			}
		}

		slog.Info("image published", "service", svc.Name, "tag", tag,
			"digest", res.Digest, "duration", time.Since(start).Round(time.Millisecond))
		results = append(results, res)
	}
	return results, nil
}
