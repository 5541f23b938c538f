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

package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
)

const phaseCompleted = "Completed"

// PodStatus is the observed state of one pod.
type PodStatus struct {
	Name     string `json:"name" yaml:"name"`
	Phase    string `json:"phase" yaml:"phase"`
	Ready    string `json:"ready" yaml:"ready"`
	Restarts int32  `json:"restarts" yaml:"restarts"`
	// Checked is true when the pod belongs to the application.
	Checked bool `json:"checked" yaml:"checked"`
	Healthy bool `json:"healthy" yaml:"healthy"`
}

// ServiceStatus is the observed state of one Service.
type ServiceStatus struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	ClusterIP string   `json:"clusterIP,omitempty" yaml:"clusterIP,omitempty"`
	Ports     []string `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// IngressInfo is the observed state of one Ingress.
type IngressInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Hosts   []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Address string   `json:"address,omitempty" yaml:"address,omitempty"`
}

// Report is a point-in-time health snapshot of the namespace.
type Report struct {
	Namespace      string          `json:"namespace" yaml:"namespace"`
	Pods           []PodStatus     `json:"pods" yaml:"pods"`
	Services       []ServiceStatus `json:"services" yaml:"services"`
	Ingresses      []IngressInfo   `json:"ingresses" yaml:"ingresses"`
	OverallHealthy bool            `json:"overallHealthy" yaml:"overallHealthy"`
	UnhealthyPods  []string        `json:"unhealthyPods,omitempty" yaml:"unhealthyPods,omitempty"`
	CheckedAt      time.Time       `json:"checkedAt" yaml:"checkedAt"`
}

// TableHeader implements serializer.Tabular.
func (r *Report) TableHeader() []string {
	return []string{"KIND", "NAME", "STATUS", "DETAIL"}
}

// TableRows implements serializer.Tabular.
func (r *Report) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Pods)+len(r.Services)+len(r.Ingresses))
	for _, p := range r.Pods {
		rows = append(rows, []string{"pod", p.Name, p.Phase, "ready " + p.Ready + ", restarts " + strconv.Itoa(int(p.Restarts))})
	}
	for _, s := range r.Services {
		rows = append(rows, []string{"service", s.Name, s.Type, strings.Join(s.Ports, ",")})
	}
	for _, i := range r.Ingresses {
		rows = append(rows, []string{"ingress", i.Name, i.Address, strings.Join(i.Hosts, ",")})
	}
	health := "healthy"
	if !r.OverallHealthy {
		health = "unhealthy: " + strings.Join(r.UnhealthyPods, ",")
	}
	return append(rows, []string{"namespace", r.Namespace, health, r.CheckedAt.Format(time.RFC3339)})
}

// Verifier inspects live cluster state after a rollout.
type Verifier struct {
	kube      kubernetes.Interface
	namespace string
	prefix    string
	names     []string
	now       func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithPrefix sets the pod name fragment identifying application pods.
func WithPrefix(prefix string) Option {
	return func(v *Verifier) {
		if prefix != "" {
			v.prefix = prefix
		}
	}
}

// WithServiceNames adds service names that also identify application pods.
func WithServiceNames(names ...string) Option {
	return func(v *Verifier) { v.names = append(v.names, names...) }
}

// NewVerifier creates a Verifier for namespace.
func NewVerifier(kube kubernetes.Interface, namespace string, opts ...Option) *Verifier {
	v := &Verifier{kube: kube, namespace: namespace, prefix: defaults.ImagePrefix, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Verify lists pods, services and ingresses of the namespace and classifies
// the application as unhealthy when any of its pods is neither Running nor
// Completed. The result is advisory.
func (v *Verifier) Verify(ctx context.Context) (*Report, error) {
	pods, err := v.kube.CoreV1().Pods(v.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", v.namespace, err)
	}
	services, err := v.kube.CoreV1().Services(v.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list services in %s: %w", v.namespace, err)
	}
	ingresses, err := v.kube.NetworkingV1().Ingresses(v.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list ingresses in %s: %w", v.namespace, err)
	}

	report := &Report{
		Namespace:      v.namespace,
		Pods:           make([]PodStatus, 0, len(pods.Items)),
		Services:       make([]ServiceStatus, 0, len(services.Items)),
		Ingresses:      make([]IngressInfo, 0, len(ingresses.Items)),
		OverallHealthy: true,
		CheckedAt:      v.now().UTC(),
	}

	for i := range pods.Items {
		ps := v.podStatus(&pods.Items[i])
		if ps.Checked && !ps.Healthy {
			report.OverallHealthy = false
			report.UnhealthyPods = append(report.UnhealthyPods, ps.Name)
		}
		report.Pods = append(report.Pods, ps)
	}
	for i := range services.Items {
		report.Services = append(report.Services, serviceStatus(&services.Items[i]))
	}
	for i := range ingresses.Items {
		report.Ingresses = append(report.Ingresses, ingressInfo(&ingresses.Items[i]))
	}

	sort.Slice(report.Pods, func(i, j int) bool { return report.Pods[i].Name < report.Pods[j].Name })
	sort.Strings(report.UnhealthyPods)

	slog.Debug("verification complete", "namespace", v.namespace, "pods", len(report.Pods),
		"services", len(report.Services), "ingresses", len(report.Ingresses), "healthy", report.OverallHealthy)
	return report, nil
}

func (v *Verifier) podStatus(p *corev1.Pod) PodStatus {
	phase := string(p.Status.Phase)
	if p.Status.Phase == corev1.PodSucceeded {
		phase = phaseCompleted
	}

	var ready int
	var restarts int32
	for _, cs := range p.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		restarts += cs.RestartCount
	}

	return PodStatus{
		Name:     p.Name,
		Phase:    phase,
		Ready:    fmt.Sprintf("%d/%d", ready, len(p.Spec.Containers)),
		Restarts: restarts,
		Checked:  v.matches(p.Name),
		Healthy:  p.Status.Phase == corev1.PodRunning || p.Status.Phase == corev1.PodSucceeded,
	}
}

func (v *Verifier) matches(name string) bool {
	if strings.Contains(name, v.prefix) {
		return true
	}
	for _, n := range v.names {
		if n != "" && strings.Contains(name, n) {
			return true
		}
	}
	return false
}

func serviceStatus(s *corev1.Service) ServiceStatus {
	ports := make([]string, 0, len(s.Spec.Ports))
	for _, p := range s.Spec.Ports {
		ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
	}
	return ServiceStatus{Name: s.Name, Type: string(s.Spec.Type), ClusterIP: s.Spec.ClusterIP, Ports: ports}
}

func ingressInfo(ing *networkingv1.Ingress) IngressInfo {
	info := IngressInfo{Name: ing.Name}
	for _, r := range ing.Spec.Rules {
		if r.Host != "" {
			info.Hosts = append(info.Hosts, r.Host)
		}
	}
	info.Address = IngressAddress(ing)
	return info
}

// IngressAddress returns the first load balancer hostname or IP of ing.
func IngressAddress(ing *networkingv1.Ingress) string {
	for _, lb := range ing.Status.LoadBalancer.Ingress {
		if lb.Hostname != "" {
			return lb.Hostname
		}
		if lb.IP != "" {
			return lb.IP
		}
	}
	return ""
}
