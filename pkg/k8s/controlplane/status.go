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
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
)

// DeploymentStatus summarizes the replica counts of a Deployment.
type DeploymentStatus struct {
	Name      string `json:"name" yaml:"name"`
	Ready     int32  `json:"ready" yaml:"ready"`
	Desired   int32  `json:"desired" yaml:"desired"`
	Available bool   `json:"available" yaml:"available"`
}

// Available reports whether the workload kind/name in namespace is serving.
// A Deployment is available when its Available condition is True for the
// current generation; a StatefulSet when all replicas are ready.
// A workload that does not exist yet is reported as not available.
func (c *Client) Available(ctx context.Context, kind, name, namespace string) (bool, error) {
	if namespace == "" {
		namespace = c.namespace
	}
	switch kind {
	case "Deployment":
		d, err := c.kube.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return deploymentAvailable(d), nil
	case "StatefulSet":
		s, err := c.kube.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		want := int32(1)
		if s.Spec.Replicas != nil {
			want = *s.Spec.Replicas
		}
		return s.Status.ReadyReplicas >= want, nil
	default:
		return false, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("readiness of kind %q is not supported", kind))
	}
}

func deploymentAvailable(d *appsv1.Deployment) bool {
	if d.Status.ObservedGeneration < d.Generation {
		return false
	}
	for _, cond := range d.Status.Conditions {
		if cond.Type == appsv1.DeploymentAvailable {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

// HasResource reports whether the API server serves kind in groupVersion,
// e.g. ("monitoring.coreos.com/v1", "ServiceMonitor").
func (c *Client) HasResource(ctx context.Context, groupVersion, kind string) (bool, error) {
	if _, err := schema.ParseGroupVersion(groupVersion); err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid group version", err)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	list, err := c.kube.Discovery().ServerResourcesForGroupVersion(groupVersion)
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to discover %s: %w", groupVersion, err)
	}
	for _, r := range list.APIResources {
		if r.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

// ServerVersion returns the API server's git version.
func (c *Client) ServerVersion(_ context.Context) (string, error) {
	v, err := c.kube.Discovery().ServerVersion()
	if err != nil {
		return "", err
	}
	return v.GitVersion, nil
}

// ListPods lists pods in namespace matching selector (may be empty).
func (c *Client) ListPods(ctx context.Context, namespace, selector string) ([]corev1.Pod, error) {
	if namespace == "" {
		namespace = c.namespace
	}
	list, err := c.kube.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}
	return list.Items, nil
}

// RunningPod returns the name of the first Running pod matching selector.
// It returns a NOT_FOUND error when none is running.
func (c *Client) RunningPod(ctx context.Context, namespace, selector string) (string, error) {
	pods, err := c.ListPods(ctx, namespace, selector)
	if err != nil {
		return "", err
	}
	sort.Slice(pods, func(i, j int) bool { return pods[i].Name < pods[j].Name })
	for _, p := range pods {
		if p.Status.Phase == corev1.PodRunning && p.DeletionTimestamp == nil {
			return p.Name, nil
		}
	}
	return "", apperrors.NewWithContext(apperrors.ErrCodeNotFound,
		"no running pod matches "+selector, map[string]any{"selector": selector})
}

// Deployments returns the replica status of every Deployment in namespace.
func (c *Client) Deployments(ctx context.Context, namespace string) ([]DeploymentStatus, error) {
	if namespace == "" {
		namespace = c.namespace
	}
	list, err := c.kube.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments in %s: %w", namespace, err)
	}
	out := make([]DeploymentStatus, 0, len(list.Items))
	for i := range list.Items {
		d := &list.Items[i]
		desired := int32(1)
		if d.Spec.Replicas != nil {
			desired = *d.Spec.Replicas
		}
		out = append(out, DeploymentStatus{
			Name:      d.Name,
			Ready:     d.Status.ReadyReplicas,
			Desired:   desired,
			Available: deploymentAvailable(d),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
