/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/k8s/controlplane"
	"github.com/flightdesk/flightdeploy/pkg/logging"
	"github.com/flightdesk/flightdeploy/pkg/orchestrator"
	"github.com/flightdesk/flightdeploy/pkg/serializer"
	"github.com/flightdesk/flightdeploy/pkg/stages"
	"github.com/flightdesk/flightdeploy/pkg/verify"
)

// Manage actions.
const (
	actionDeploy  = "deploy"
	actionStatus  = "status"
	actionLogs    = "logs"
	actionScale   = "scale"
	actionCleanup = "cleanup"
	actionTest    = "test"
)

var manageActions = []string{actionDeploy, actionStatus, actionLogs, actionScale, actionCleanup, actionTest}

// connectControlPlane is replaced in tests.
var connectControlPlane = controlplane.NewFromKubeconfig

func manageCmd(s streams, extra ...orchestrator.Option) *cli.Command {
	flags := append(deployFlags(),
		&cli.StringFlag{
			Name:     "action",
			Aliases:  []string{"a"},
			Usage:    "Action to run (" + strings.Join(manageActions, ", ") + ")",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "service",
			Aliases: []string{"s"},
			Usage:   "Service to act on (" + strings.Join(config.ServiceNames(), ", ") + ")",
		},
		&cli.IntFlag{
			Name:  "replicas",
			Usage: "Replica count for --action scale",
			Value: -1,
		},
		&cli.BoolFlag{
			Name:    "follow",
			Aliases: []string{"f"},
			Usage:   "Keep streaming logs until interrupted",
		},
		&cli.IntFlag{
			Name:  "tail",
			Usage: "Number of recent log lines per pod (0 for all)",
			Value: 100,
		},
		&cli.StringFlag{
			Name:  "message",
			Usage: "Chat message sent by --action test",
			Value: stages.DefaultSmokeMessage,
		},
	)

	return &cli.Command{
		Name:                  "manage",
		EnableShellCompletion: true,
		Usage:                 "Inspect and operate a deployed namespace",
		Description: `Runs one management action against the application namespace:

  deploy   Same as the deploy command
  status   Pod, service and ingress health plus Deployment replica counts
  logs     Recent (or followed) logs of one service, or of all services at once
  scale    Set the replica count of one service (--service, --replicas)
  cleanup  Delete the namespace and everything in it, after confirmation
  test     Health check and one chat request against llm-service

# Examples

  flightdeploy manage --action status --format json
  flightdeploy manage --action logs --service rag-service --follow
  flightdeploy manage --action scale --service llm-service --replicas 2
  flightdeploy manage --action cleanup --yes`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runManage(ctx, cmd, s, extra...)
		},
	}
}

func runManage(ctx context.Context, cmd *cli.Command, s streams, extra ...orchestrator.Option) error {
	action := strings.ToLower(cmd.String("action"))
	if !slices.Contains(manageActions, action) {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid --action %q (must be one of %s)", action, strings.Join(manageActions, ", ")))
	}
	if action == actionDeploy {
		return runDeploy(ctx, cmd, s, extra...)
	}

	format, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --format", err)
	}
	services, err := selectServices(cmd.String("service"), action == actionScale)
	if err != nil {
		return err
	}
	if action == actionScale && cmd.Int("replicas") < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "--replicas must be set to 0 or more for --action scale")
	}

	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}
	ns := cfg.Target().Namespace

	cp, err := connectControlPlane(cfg.Kubeconfig(), ns)
	if err != nil {
		return errors.Wrap(errors.ErrCodePrerequisiteMissing, "kubeconfig could not be loaded", err)
	}

	switch action {
	case actionStatus:
		w := newOutputWriter(cmd, format, s)
		defer closeWriter(w)
		return manageStatus(ctx, cp, cfg, w)
	case actionLogs:
		return manageLogs(ctx, cp, ns, services, controlplane.LogOptions{
			Follow:    cmd.Bool("follow"),
			TailLines: int64(cmd.Int("tail")),
		}, s.out)
	case actionScale:
		return manageScale(ctx, cp, ns, services[0], int32(cmd.Int("replicas")))
	case actionCleanup:
		return manageCleanup(ctx, cp, ns, cfg.AssumeYes(), newLinePrompter(s.in, s.errOut))
	default:
		w := newOutputWriter(cmd, format, s)
		defer closeWriter(w)
		return manageTest(ctx, cp, ns, cmd.String("message"), w)
	}
}

// selectServices returns the named service, or every service when name is
// empty and not required.
func selectServices(name string, required bool) ([]config.Service, error) {
	if name == "" {
		if required {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "--service is required for this action")
		}
		return config.DefaultServices(""), nil
	}
	svc, ok := config.LookupService(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown service %q (must be one of %s)", name, strings.Join(config.ServiceNames(), ", ")))
	}
	return []config.Service{svc}, nil
}

// statusView combines the verification report with replica counts.
type statusView struct {
	Report      *verify.Report                  `json:"report" yaml:"report"`
	Deployments []controlplane.DeploymentStatus `json:"deployments" yaml:"deployments"`
}

func (v *statusView) TableHeader() []string {
	return v.Report.TableHeader()
}

func (v *statusView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Deployments))
	for _, d := range v.Deployments {
		state := "progressing"
		if d.Available {
			state = "available"
		}
		rows = append(rows, []string{"deployment", d.Name, state, fmt.Sprintf("ready %d/%d", d.Ready, d.Desired)})
	}
	return append(rows, v.Report.TableRows()...)
}

func manageStatus(ctx context.Context, cp *controlplane.Client, cfg *config.Config, w *serializer.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()
	ns := cfg.Target().Namespace

	report, err := verify.NewVerifier(cp.Kube(), ns,
		verify.WithPrefix(cfg.AppPrefix()), verify.WithServiceNames(config.ServiceNames()...)).Verify(ctx)
	if err != nil {
		return err
	}
	deployments, err := cp.Deployments(ctx, ns)
	if err != nil {
		return err
	}
	if !report.OverallHealthy {
		slog.Warn("application pods not healthy", "pods", strings.Join(report.UnhealthyPods, ","))
	}
	return w.Serialize(ctx, &statusView{Report: report, Deployments: deployments})
}

// syncWriter serializes writes from concurrent log streams.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// logStream is one pod whose logs are copied to the output.
type logStream struct {
	pod    string
	prefix string
}

// manageLogs resolves the pods of every service first so that a lookup
// failure never leaves streams running, then copies their logs concurrently.
func manageLogs(ctx context.Context, cp *controlplane.Client, ns string, services []config.Service, opts controlplane.LogOptions, out io.Writer) error {
	var targets []logStream
	for _, svc := range services {
		pods, err := cp.ListPods(ctx, ns, svc.Selector())
		if err != nil {
			return err
		}
		if len(pods) == 0 {
			slog.Warn("no pods found", "service", svc.Name)
			continue
		}
		for _, p := range pods {
			prefix := "[" + svc.Name + "]"
			if len(pods) > 1 {
				prefix = "[" + p.Name + "]"
			}
			targets = append(targets, logStream{pod: p.Name, prefix: prefix})
		}
	}
	if len(targets) == 0 {
		return errors.NewWithContext(errors.ErrCodeNotFound, "no pods to read logs from",
			map[string]any{"namespace": ns})
	}

	w := &syncWriter{w: out}
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		podOpts := opts
		podOpts.Prefix = target.prefix
		g.Go(func() error {
			return cp.Logs(gctx, ns, target.pod, w, podOpts)
		})
	}
	return g.Wait()
}

func manageScale(ctx context.Context, cp *controlplane.Client, ns string, svc config.Service, replicas int32) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()
	if err := cp.Scale(ctx, ns, svc.Name, replicas); err != nil {
		return err
	}
	logging.SuccessContext(ctx, "deployment scaled", "service", svc.Name, "replicas", replicas)
	return nil
}

func manageCleanup(ctx context.Context, cp *controlplane.Client, ns string, assumeYes bool, c orchestrator.Confirmer) error {
	if !assumeYes {
		answer, err := c.Confirm(fmt.Sprintf("Delete namespace %s and everything in it? [y/N]: ", ns))
		if err != nil || !orchestrator.Affirmative(answer) {
			slog.Info("cleanup cancelled", "namespace", ns)
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sCleanupTimeout)
	defer cancel()
	if err := cp.DeleteNamespace(ctx, ns); err != nil {
		return err
	}
	logging.SuccessContext(ctx, "namespace deleted", "namespace", ns)
	return nil
}

func manageTest(ctx context.Context, cp *controlplane.Client, ns, message string, w *serializer.Writer) error {
	svc, _ := config.LookupService("llm-service")
	pod, err := cp.RunningPod(ctx, ns, svc.Selector())
	if err != nil {
		return err
	}
	fw, err := cp.PortForward(ctx, ns, pod, uint16(svc.Port))
	if err != nil {
		return err
	}
	defer fw.Close()

	result, err := stages.Smoke(ctx, nil, fw.URL(), message)
	if result != nil {
		if serr := w.Serialize(ctx, result); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}
