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

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/deploy"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/logging"
	"github.com/flightdesk/flightdeploy/pkg/manifest"
	"github.com/flightdesk/flightdeploy/pkg/oci"
	"github.com/flightdesk/flightdeploy/pkg/publisher"
	"github.com/flightdesk/flightdeploy/pkg/stages"
	"github.com/flightdesk/flightdeploy/pkg/verify"
)

// Confirmer asks the operator a question and returns the raw answer.
type Confirmer interface {
	Confirm(prompt string) (string, error)
}

// Affirmative reports whether answer is "y" or "yes", ignoring case and
// surrounding space.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Orchestrator drives one deployment run through its states.
type Orchestrator struct {
	cfg        *config.Config
	confirmer  Confirmer
	connect    ConnectFunc
	newBuilder BuilderFunc
	resolve    publisher.ResolveFunc
	metrics    *Metrics
	runID      string
	log        *slog.Logger
	now        func() time.Time

	builder publisher.Builder
	backend *Backend
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfirmer sets the operator prompt. Without one every question is
// answered no.
func WithConfirmer(c Confirmer) Option {
	return func(o *Orchestrator) { o.confirmer = c }
}

// WithConnect overrides how cluster collaborators are created.
func WithConnect(fn ConnectFunc) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.connect = fn
		}
	}
}

// WithBuilderFunc overrides how the build tool is located.
func WithBuilderFunc(fn BuilderFunc) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newBuilder = fn
		}
	}
}

// WithResolver overrides digest resolution. It is only used when the
// configuration enables it.
func WithResolver(fn publisher.ResolveFunc) Option {
	return func(o *Orchestrator) { o.resolve = fn }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(o *Orchestrator) {
		if id != "" {
			o.runID = id
		}
	}
}

// New creates an Orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		connect:    Connect,
		newBuilder: NewBuilder,
		metrics:    NewMetrics(),
		runID:      uuid.NewString(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.resolve == nil {
		ro := oci.ResolveOptions{PlainHTTP: cfg.PlainHTTP(), InsecureTLS: cfg.InsecureTLS()}
		o.resolve = func(ctx context.Context, image string) (*oci.Resolved, error) {
			return oci.Resolve(ctx, image, ro)
		}
	}
	o.log = slog.Default().With("run", o.runID)
	return o
}

// RunID returns the id attached to every log line of the run.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Metrics returns the run metrics.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Run executes the deployment. A declined confirmation ends in Cancelled with
// a nil error. Any fatal failure ends in Failed and is returned; advisory
// problems are logged and collected in the summary.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	start := o.now()
	s := &RunSummary{RunID: o.runID, Target: o.cfg.Target(), States: []State{StateInit}, FinalState: StateInit}
	defer func() {
		s.Duration = o.now().Sub(start)
		o.metrics.ObserveRun(s.FinalState)
		o.pushMetrics(ctx)
	}()

	t := o.cfg.Target()
	o.log.Info("starting deployment", "registry", t.Registry, "namespace", t.Namespace, "version", t.Version)

	if err := o.cfg.Validate(); err != nil {
		return o.fail(s, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid configuration", err))
	}

	if err := o.step(ctx, s, StatePrereqCheck, o.checkPrereqs); err != nil {
		return o.fail(s, err)
	}

	if err := o.enter(s, StateConfirm); err != nil {
		return o.fail(s, err)
	}
	if !o.cfg.AssumeYes() && !o.ask(o.deployPrompt()) {
		if err := o.enter(s, StateCancelled); err != nil {
			return o.fail(s, err)
		}
		o.log.Info("deployment cancelled by operator")
		return s, nil
	}

	if err := o.step(ctx, s, StatePublish, func(ctx context.Context) error {
		res, err := o.publish(ctx)
		s.Published = res
		return err
	}); err != nil {
		return o.fail(s, err)
	}

	if err := o.step(ctx, s, StateRewrite, func(ctx context.Context) error {
		changes, err := o.rewrite(ctx)
		s.Rewritten = changes
		return err
	}); err != nil {
		return o.fail(s, err)
	}

	if o.cfg.DryRun() {
		o.log.Info("dry run: manifests previewed, nothing applied")
		return o.finish(s)
	}

	if err := o.step(ctx, s, StateApply, func(ctx context.Context) error {
		tiers, err := o.apply(ctx)
		s.Tiers = tiers
		return err
	}); err != nil {
		return o.fail(s, err)
	}

	if err := o.advisory(ctx, s, StateVerify, func(ctx context.Context) error {
		report, err := o.verify(ctx)
		s.Report = report
		return err
	}); err != nil {
		return o.fail(s, err)
	}

	if o.decide(o.cfg.Seed(), "Seed the vector database with sample flights? [y/N]: ") {
		if err := o.advisory(ctx, s, StateSeed, func(ctx context.Context) error {
			summary, err := o.seed(ctx)
			s.Seed = summary
			return err
		}); err != nil {
			return o.fail(s, err)
		}
	}

	if o.decide(o.cfg.Probe(), "Run the latency probe against the public endpoint? [y/N]: ") {
		if err := o.advisory(ctx, s, StateProbe, func(ctx context.Context) error {
			summary, err := stages.NewProber(o.backend.Kube, o.cfg.Target().Namespace).Probe(ctx)
			s.Probe = summary
			return err
		}); err != nil {
			return o.fail(s, err)
		}
	}

	return o.finish(s)
}

// enter moves the run into state after validating the edge.
func (o *Orchestrator) enter(s *RunSummary, state State) error {
	if err := transition(s.Current(), state); err != nil {
		return err
	}
	s.States = append(s.States, state)
	s.FinalState = state
	return nil
}

// step runs a state whose failure is fatal.
func (o *Orchestrator) step(ctx context.Context, s *RunSummary, state State, fn func(context.Context) error) error {
	if err := o.enter(s, state); err != nil {
		return err
	}
	o.log.Info("entering state", "state", state)
	start := o.now()

	err := fn(ctx)
	d := o.now().Sub(start)
	if err != nil {
		o.metrics.ObserveState(state, OutcomeFailure, d)
		return err
	}
	o.metrics.ObserveState(state, OutcomeSuccess, d)
	logging.SuccessContext(ctx, "state complete", "run", o.runID, "state", state, "duration", d.Round(time.Millisecond))
	return nil
}

// advisory runs a state whose failure is only reported. Cancellation still
// aborts the run.
func (o *Orchestrator) advisory(ctx context.Context, s *RunSummary, state State, fn func(context.Context) error) error {
	if err := o.enter(s, state); err != nil {
		return err
	}
	o.log.Info("entering state", "state", state)
	start := o.now()

	err := fn(ctx)
	d := o.now().Sub(start)
	switch {
	case err == nil:
		o.metrics.ObserveState(state, OutcomeSuccess, d)
		logging.SuccessContext(ctx, "state complete", "run", o.runID, "state", state, "duration", d.Round(time.Millisecond))
		return nil
	case ctx.Err() != nil:
		o.metrics.ObserveState(state, OutcomeFailure, d)
		return ctx.Err()
	case errors.HasCode(err, errors.ErrCodeOptionalStageSkipped):
		o.metrics.ObserveState(state, OutcomeSkipped, d)
	case errors.IsFatal(err):
		// Uncoded errors still do not stop the run, but count as failures.
		o.metrics.ObserveState(state, OutcomeFailure, d)
	default:
		o.metrics.ObserveState(state, OutcomeWarning, d)
	}
	o.log.Warn("state finished with warnings", "state", state, "error", err)
	s.Warnings = append(s.Warnings, fmt.Sprintf("%s: %v", state, err))
	return nil
}

func (o *Orchestrator) fail(s *RunSummary, err error) (*RunSummary, error) {
	at := s.Current()
	if terr := transition(s.Current(), StateFailed); terr == nil {
		s.States = append(s.States, StateFailed)
	}
	s.FinalState = StateFailed
	s.Error = err.Error()
	o.log.Error("deployment failed", "state", at, "code", errors.CodeOf(err), "error", err)
	return s, err
}

func (o *Orchestrator) finish(s *RunSummary) (*RunSummary, error) {
	if err := o.enter(s, StateDone); err != nil {
		return o.fail(s, err)
	}
	o.log.Log(context.Background(), logging.LevelSuccess, "deployment complete",
		"namespace", o.cfg.Target().Namespace, "version", o.cfg.Target().Version, "warnings", len(s.Warnings))
	return s, nil
}

func (o *Orchestrator) deployPrompt() string {
	t := o.cfg.Target()
	return fmt.Sprintf("Deploy version %s from %s to namespace %s? [y/N]: ", t.Version, t.Registry, t.Namespace)
}

// ask returns true only for an affirmative answer. Prompt errors, including
// end of input, count as no.
func (o *Orchestrator) ask(prompt string) bool {
	if o.confirmer == nil {
		return false
	}
	answer, err := o.confirmer.Confirm(prompt)
	if err != nil {
		o.log.Debug("prompt ended without an answer", "error", err)
		return false
	}
	return Affirmative(answer)
}

// decide resolves an optional stage choice. Ask prompts unless --yes was given.
func (o *Orchestrator) decide(c config.Choice, prompt string) bool {
	switch c {
	case config.ChoiceYes:
		return true
	case config.ChoiceNo:
		return false
	default:
		if o.cfg.AssumeYes() {
			return true
		}
		return o.ask(prompt)
	}
}

func (o *Orchestrator) publish(ctx context.Context) ([]publisher.Result, error) {
	services := o.cfg.Services()
	if !o.needsBuilder() {
		tags, err := publisher.Tags(services, o.cfg.Target())
		if err != nil {
			return nil, err
		}
		o.log.Info("skipping image build", "images", len(tags))
		results := make([]publisher.Result, len(tags))
		for i, tag := range tags {
			results[i] = publisher.Result{Service: services[i].Name, Reference: tag}
		}
		return results, nil
	}

	var opts []publisher.Option
	if o.cfg.ResolveDigests() {
		opts = append(opts, publisher.WithResolver(o.resolve))
	}
	return publisher.New(o.builder, opts...).Publish(ctx, services, o.cfg.Target())
}

func (o *Orchestrator) rewrite(ctx context.Context) ([]manifest.FileChange, error) {
	if o.cfg.DryRun() {
		return manifest.Preview(ctx, o.cfg.ManifestDir(), o.cfg.Target())
	}
	return manifest.RewriteDir(ctx, o.cfg.ManifestDir(), o.cfg.Target())
}

func (o *Orchestrator) apply(ctx context.Context) ([]deploy.TierResult, error) {
	cp := o.backend.ControlPlane
	gate := deploy.NewReadinessGate(cp, o.cfg.PollInterval())
	applier := deploy.NewApplier(cp, gate, deploy.DefaultTiers(o.cfg.ManifestDir()),
		o.cfg.Target().Namespace, o.cfg.GateTimeout())
	return applier.Apply(ctx)
}

func (o *Orchestrator) verify(ctx context.Context) (*verify.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()

	v := verify.NewVerifier(o.backend.Kube, o.cfg.Target().Namespace,
		verify.WithPrefix(o.cfg.AppPrefix()), verify.WithServiceNames(config.ServiceNames()...))
	report, err := v.Verify(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVerificationAdvisory, "verification failed", err)
	}
	if !report.OverallHealthy {
		return report, errors.NewWithContext(errors.ErrCodeVerificationAdvisory,
			"application pods not healthy", map[string]any{"pods": strings.Join(report.UnhealthyPods, ",")})
	}
	return report, nil
}

func (o *Orchestrator) seed(ctx context.Context) (*stages.SeedSummary, error) {
	loader := stages.NewLoader(
		stages.WithLimit(o.cfg.SeedLimit()),
		stages.WithRate(o.cfg.SeedRate()),
		stages.WithReset(o.cfg.SeedReset()),
	)
	return stages.NewSeeder(o.backend.Pods, o.cfg.Target().Namespace, o.cfg.DatasetPath(), loader).Seed(ctx)
}

func (o *Orchestrator) pushMetrics(ctx context.Context) {
	url := o.cfg.PushgatewayURL()
	if url == "" {
		return
	}
	// the run context may already be cancelled
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.HTTPClientTimeout)
	defer cancel()
	if err := o.metrics.Push(pctx, url, o.runID); err != nil {
		o.log.Warn("failed to push metrics", "url", url, "error", err)
		return
	}
	o.log.Debug("metrics pushed", "url", url)
}
