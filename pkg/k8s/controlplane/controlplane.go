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
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/k8s/client"
)

// Resource identifies one object sent to the cluster.
type Resource struct {
	Kind      string `json:"kind" yaml:"kind"`
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// String returns "Kind/name" or "Kind/namespace/name".
func (r Resource) String() string {
	if r.Namespace == "" {
		return r.Kind + "/" + r.Name
	}
	return r.Kind + "/" + r.Namespace + "/" + r.Name
}

// Client talks to the Kubernetes API on behalf of the deployment pipeline.
type Client struct {
	kube         kubernetes.Interface
	dynamic      dynamic.Interface
	mapper       meta.RESTMapper
	restConfig   *rest.Config
	namespace    string
	fieldManager string
}

// Option configures a Client.
type Option func(*Client)

// WithFieldManager overrides the server-side apply field manager.
func WithFieldManager(name string) Option {
	return func(c *Client) { c.fieldManager = name }
}

// WithRESTMapper replaces the discovery-backed REST mapper.
func WithRESTMapper(m meta.RESTMapper) Option {
	return func(c *Client) { c.mapper = m }
}

// New creates a Client. namespace is applied to namespaced objects that do
// not set one. restConfig may be nil when exec and port forwarding are unused.
func New(kube kubernetes.Interface, dyn dynamic.Interface, restConfig *rest.Config, namespace string, opts ...Option) *Client {
	c := &Client{
		kube:         kube,
		dynamic:      dyn,
		restConfig:   restConfig,
		namespace:    namespace,
		fieldManager: defaults.FieldManager,
	}
	for _, o := range opts {
		o(c)
	}
	if c.mapper == nil {
		c.mapper = restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(kube.Discovery()))
	}
	return c
}

// NewFromKubeconfig builds the API clients for kubeconfig and wraps them.
func NewFromKubeconfig(kubeconfig, namespace string) (*Client, error) {
	clients, err := client.Build(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return New(clients.Kube, clients.Dynamic, clients.Config, namespace), nil
}

// Namespace returns the default namespace of the client.
func (c *Client) Namespace() string {
	return c.namespace
}

// Kube returns the typed clientset.
func (c *Client) Kube() kubernetes.Interface {
	return c.kube
}
