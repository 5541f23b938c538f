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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"
)

const ns = "flight-assistant"

func pod(name string, phase corev1.PodPhase, restarts int32) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
		Status: corev1.PodStatus{
			Phase:             phase,
			ContainerStatuses: []corev1.ContainerStatus{{Name: "app", Ready: phase == corev1.PodRunning, RestartCount: restarts}},
		},
	}
}

func TestVerifyClassification(t *testing.T) {
	tests := []struct {
		name          string
		pods          []runtime.Object
		wantHealthy   bool
		wantUnhealthy []string
	}{
		{
			name:        "all running",
			pods:        []runtime.Object{pod("flight-vector-db-abc", corev1.PodRunning, 0), pod("flight-rag-service-def", corev1.PodRunning, 1)},
			wantHealthy: true,
		},
		{
			name:        "completed job counts as healthy",
			pods:        []runtime.Object{pod("flight-seed-job-x", corev1.PodSucceeded, 0)},
			wantHealthy: true,
		},
		{
			name:          "pending application pod",
			pods:          []runtime.Object{pod("flight-llm-service-1", corev1.PodPending, 0), pod("flight-vector-db-1", corev1.PodRunning, 0)},
			wantHealthy:   false,
			wantUnhealthy: []string{"flight-llm-service-1"},
		},
		{
			name:          "matched by service name",
			pods:          []runtime.Object{pod("console-frontend-7d9", corev1.PodFailed, 3)},
			wantHealthy:   false,
			wantUnhealthy: []string{"console-frontend-7d9"},
		},
		{
			name:        "unrelated failing pod ignored",
			pods:        []runtime.Object{pod("redis-0", corev1.PodFailed, 0), pod("flight-vector-db-1", corev1.PodRunning, 0)},
			wantHealthy: true,
		},
		{
			name:        "empty namespace",
			wantHealthy: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(fake.NewClientset(tt.pods...), ns, WithServiceNames("console-frontend"))
			report, err := v.Verify(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantHealthy, report.OverallHealthy)
			assert.Equal(t, tt.wantUnhealthy, report.UnhealthyPods)
			assert.Len(t, report.Pods, len(tt.pods))
		})
	}
}

func TestVerifyPodDetails(t *testing.T) {
	v := NewVerifier(fake.NewClientset(
		pod("flight-seed-1", corev1.PodSucceeded, 0),
		pod("flight-vector-db-1", corev1.PodRunning, 2),
	), ns)
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	report, err := v.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Pods, 2)

	assert.Equal(t, PodStatus{Name: "flight-seed-1", Phase: "Completed", Ready: "0/1", Checked: true, Healthy: true}, report.Pods[0])
	assert.Equal(t, PodStatus{Name: "flight-vector-db-1", Phase: "Running", Ready: "1/1", Restarts: 2, Checked: true, Healthy: true}, report.Pods[1])
	assert.Equal(t, fixed, report.CheckedAt)
}

func TestVerifyServicesAndIngresses(t *testing.T) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "vector-db", Namespace: ns},
		Spec: corev1.ServiceSpec{
			Type:      corev1.ServiceTypeClusterIP,
			ClusterIP: "10.0.0.12",
			Ports:     []corev1.ServicePort{{Port: 8000, Protocol: corev1.ProtocolTCP}},
		},
	}
	ing := &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{Name: "console", Namespace: ns},
		Spec:       networkingv1.IngressSpec{Rules: []networkingv1.IngressRule{{Host: "flights.example.com"}}},
		Status: networkingv1.IngressStatus{LoadBalancer: networkingv1.IngressLoadBalancerStatus{
			Ingress: []networkingv1.IngressLoadBalancerIngress{{IP: "203.0.113.7"}},
		}},
	}

	report, err := NewVerifier(fake.NewClientset(svc, ing), ns).Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ServiceStatus{{Name: "vector-db", Type: "ClusterIP", ClusterIP: "10.0.0.12", Ports: []string{"8000/TCP"}}}, report.Services)
	assert.Equal(t, []IngressInfo{{Name: "console", Hosts: []string{"flights.example.com"}, Address: "203.0.113.7"}}, report.Ingresses)

	rows := report.TableRows()
	assert.Len(t, rows, 3)
	assert.Equal(t, "namespace", rows[2][0])
	assert.Equal(t, "healthy", rows[2][2])
	assert.Len(t, report.TableHeader(), 4)
}

func TestVerifyListError(t *testing.T) {
	cs := fake.NewClientset()
	cs.PrependReactor("list", "services", func(clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("etcd unavailable")
	})
	_, err := NewVerifier(cs, ns).Verify(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "services"))
}

func TestIngressAddressHostnameFirst(t *testing.T) {
	ing := &networkingv1.Ingress{Status: networkingv1.IngressStatus{LoadBalancer: networkingv1.IngressLoadBalancerStatus{
		Ingress: []networkingv1.IngressLoadBalancerIngress{{Hostname: "lb.example.com", IP: "203.0.113.7"}},
	}}}
	assert.Equal(t, "lb.example.com", IngressAddress(ing))
	assert.Empty(t, IngressAddress(&networkingv1.Ingress{}))
}
