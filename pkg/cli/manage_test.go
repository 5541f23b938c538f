/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	"k8s.io/utils/ptr"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/errors"
	"github.com/flightdesk/flightdeploy/pkg/k8s/controlplane"
)

const testNamespace = "flight-test"

func runningPod(name, app string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace, Labels: map[string]string{"app": app}},
		Status: corev1.PodStatus{
			Phase:             corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{{Name: app, Ready: true}},
		},
	}
}

func deployment(name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace},
		Spec:       appsv1.DeploymentSpec{Replicas: ptr.To(replicas)},
		Status:     appsv1.DeploymentStatus{Replicas: replicas, ReadyReplicas: replicas, AvailableReplicas: replicas},
	}
}

// withCluster points the manage command at a fake clientset for the
// duration of the test.
func withCluster(t *testing.T, objects ...runtime.Object) *fake.Clientset {
	t.Helper()
	kube := fake.NewClientset(objects...)
	dyn := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme())
	prev := connectControlPlane
	connectControlPlane = func(_, ns string) (*controlplane.Client, error) {
		return controlplane.New(kube, dyn, nil, ns), nil
	}
	t.Cleanup(func() { connectControlPlane = prev })
	return kube
}

func runManageCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)
	var out, errOut bytes.Buffer
	cmd := manageCmd(streams{in: strings.NewReader(stdin), out: &out, errOut: &errOut})
	err := cmd.Run(context.Background(), append([]string{"manage", "--namespace", testNamespace}, args...))
	return out.String(), err
}

func TestManageInvalidInput(t *testing.T) {
	withCluster(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown action", []string{"--action", "restart"}},
		{"unknown format", []string{"--action", "status", "--format", "xml"}},
		{"unknown service", []string{"--action", "logs", "--service", "billing"}},
		{"scale without service", []string{"--action", "scale", "--replicas", "2"}},
		{"scale without replicas", []string{"--action", "scale", "--service", "llm-service"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runManageCmd(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
		})
	}
}

func TestManageStatus(t *testing.T) {
	withCluster(t,
		runningPod("flight-vector-db-0", "vector-db"),
		runningPod("flight-llm-service-7c9", "llm-service"),
		deployment("llm-service", 1),
	)

	out, err := runManageCmd(t, "", "--action", "status", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "flight-vector-db-0")
	assert.Contains(t, out, "flight-llm-service-7c9")
	assert.Contains(t, out, `"deployments"`)
	assert.Contains(t, out, "llm-service")
}

func TestManageStatusToFile(t *testing.T) {
	withCluster(t, runningPod("flight-rag-service-0", "rag-service"))
	path := filepath.Join(t.TempDir(), "status.yaml")

	out, err := runManageCmd(t, "", "--action", "status", "--format", "yaml", "--output", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flight-rag-service-0")
}

func TestManageScale(t *testing.T) {
	kube := withCluster(t, deployment("llm-service", 1))

	_, err := runManageCmd(t, "", "--action", "scale", "--service", "llm-service", "--replicas", "3")
	require.NoError(t, err)

	d, err := kube.AppsV1().Deployments(testNamespace).Get(context.Background(), "llm-service", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), *d.Spec.Replicas)
}

func TestManageScaleMissingDeployment(t *testing.T) {
	withCluster(t)
	_, err := runManageCmd(t, "", "--action", "scale", "--service", "rag-service", "--replicas", "0")
	require.Error(t, err)
}

func TestManageCleanup(t *testing.T) {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: testNamespace}}

	t.Run("declined", func(t *testing.T) {
		kube := withCluster(t, ns.DeepCopy())
		_, err := runManageCmd(t, "no\n", "--action", "cleanup")
		require.NoError(t, err)
		_, err = kube.CoreV1().Namespaces().Get(context.Background(), testNamespace, metav1.GetOptions{})
		assert.NoError(t, err)
	})

	t.Run("end of input", func(t *testing.T) {
		kube := withCluster(t, ns.DeepCopy())
		_, err := runManageCmd(t, "", "--action", "cleanup")
		require.NoError(t, err)
		_, err = kube.CoreV1().Namespaces().Get(context.Background(), testNamespace, metav1.GetOptions{})
		assert.NoError(t, err)
	})

	t.Run("confirmed", func(t *testing.T) {
		kube := withCluster(t, ns.DeepCopy())
		_, err := runManageCmd(t, "y\n", "--action", "cleanup")
		require.NoError(t, err)
		_, err = kube.CoreV1().Namespaces().Get(context.Background(), testNamespace, metav1.GetOptions{})
		assert.True(t, apierrors.IsNotFound(err))
	})

	t.Run("assume yes", func(t *testing.T) {
		kube := withCluster(t, ns.DeepCopy())
		_, err := runManageCmd(t, "", "--action", "cleanup", "--yes")
		require.NoError(t, err)
		_, err = kube.CoreV1().Namespaces().Get(context.Background(), testNamespace, metav1.GetOptions{})
		assert.True(t, apierrors.IsNotFound(err))
	})

	t.Run("already gone", func(t *testing.T) {
		withCluster(t)
		_, err := runManageCmd(t, "", "--action", "cleanup", "--yes")
		require.NoError(t, err)
	})
}

func TestManageLogs(t *testing.T) {
	t.Run("one service", func(t *testing.T) {
		withCluster(t, runningPod("vector-db-0", "vector-db"))
		out, err := runManageCmd(t, "", "--action", "logs", "--service", "vector-db")
		require.NoError(t, err)
		assert.Equal(t, "[vector-db] fake logs\n", out)
	})

	t.Run("several pods of one service", func(t *testing.T) {
		withCluster(t, runningPod("rag-service-a", "rag-service"), runningPod("rag-service-b", "rag-service"))
		out, err := runManageCmd(t, "", "--action", "logs", "--service", "rag-service")
		require.NoError(t, err)
		assert.Contains(t, out, "[rag-service-a] fake logs\n")
		assert.Contains(t, out, "[rag-service-b] fake logs\n")
	})

	t.Run("all services", func(t *testing.T) {
		withCluster(t, runningPod("vector-db-0", "vector-db"), runningPod("llm-service-0", "llm-service"))
		out, err := runManageCmd(t, "", "--action", "logs")
		require.NoError(t, err)
		assert.Contains(t, out, "[vector-db] fake logs\n")
		assert.Contains(t, out, "[llm-service] fake logs\n")
	})

	t.Run("lookup failure starts no stream", func(t *testing.T) {
		kube := withCluster(t, runningPod("vector-db-0", "vector-db"))
		kube.PrependReactor("list", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
			sel := action.(k8stesting.ListAction).GetListRestrictions().Labels.String()
			if sel == "app=rag-service" {
				return true, nil, fmt.Errorf("etcd unavailable")
			}
			return false, nil, nil
		})
		out, err := runManageCmd(t, "", "--action", "logs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "etcd unavailable")
		assert.Empty(t, out)
	})

	t.Run("no pods", func(t *testing.T) {
		withCluster(t)
		_, err := runManageCmd(t, "", "--action", "logs")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
	})
}

func TestSelectServices(t *testing.T) {
	all, err := selectServices("", false)
	require.NoError(t, err)
	assert.Len(t, all, len(config.ServiceNames()))

	one, err := selectServices("rag-service", true)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "rag-service", one[0].Name)

	_, err = selectServices("", true)
	assert.Error(t, err)
}
