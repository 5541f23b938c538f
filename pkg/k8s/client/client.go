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

package client

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
)

// Interface is an alias for kubernetes.Interface so callers can pass
// fake.NewClientset() in tests.
type Interface = kubernetes.Interface

// Clients bundles the API clients built from one kubeconfig.
type Clients struct {
	Kube    *kubernetes.Clientset
	Dynamic dynamic.Interface
	Config  *rest.Config
	// Source is the kubeconfig path used, empty for in-cluster configuration.
	Source string
}

// ResolveKubeconfig returns the kubeconfig path to load. An explicit path wins,
// then KUBECONFIG, then ~/.kube/config when it exists. An empty result means
// in-cluster configuration.
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// BuildRestConfig loads the REST configuration for kubeconfig (see ResolveKubeconfig).
func BuildRestConfig(kubeconfig string) (*rest.Config, error) {
	path := ResolveKubeconfig(kubeconfig)

	// InClusterConfig directly avoids the "Neither --kubeconfig nor --master" warning.
	if path == "" {
		cfg, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config from %s: %w", path, err)
	}
	return cfg, nil
}

// Build creates the typed and dynamic clients for kubeconfig.
func Build(kubeconfig string) (*Clients, error) {
	cfg, err := BuildRestConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.K8sAPITimeout
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return &Clients{Kube: cs, Dynamic: dyn, Config: cfg, Source: ResolveKubeconfig(kubeconfig)}, nil
}
