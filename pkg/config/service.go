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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
)

// Service is one deployable unit of the application.
type Service struct {
	// Name is the short service name, e.g. "vector-db".
	Name string
	// ContextDir is the container build context.
	ContextDir string
	// Repository is the image repository name, always "flight-" + Name.
	Repository string
	// Port is the in-cluster HTTP port of the service.
	Port int
}

// Selector returns the label selector matching the service's pods.
func (s Service) Selector() string {
	return "app=" + s.Name
}

// ServiceNames lists the application services in publish order.
func ServiceNames() []string {
	return []string{"vector-db", "rag-service", "llm-service", "console-frontend"}
}

// NewService builds a Service rooted at servicesDir.
func NewService(servicesDir, name string) Service {
	return Service{
		Name:       name,
		ContextDir: filepath.Join(servicesDir, name) + string(filepath.Separator),
		Repository: defaults.ImagePrefix + name,
		Port:       defaults.ServicePort,
	}
}

// DefaultServices returns the fixed ordered service set.
func DefaultServices(servicesDir string) []Service {
	names := ServiceNames()
	services := make([]Service, 0, len(names))
	for _, n := range names {
		services = append(services, NewService(servicesDir, n))
	}
	return services
}

// LookupService returns the named service from the default set.
func LookupService(name string) (Service, bool) {
	for _, n := range ServiceNames() {
		if n == name {
			return NewService(defaultServicesDir, n), true
		}
	}
	return Service{}, false
}

// Target identifies where one run deploys to. It does not change during a run.
type Target struct {
	Registry  string `json:"registry" yaml:"registry"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Version   string `json:"version" yaml:"version"`
}

// Image returns the registry-qualified image reference for a repository.
func (t Target) Image(repository string) string {
	return fmt.Sprintf("%s/%s:%s", strings.TrimSuffix(t.Registry, "/"), repository, t.Version)
}

// Choice resolves an optional stage decision.
type Choice int

const (
	// ChoiceAsk defers the decision to an interactive prompt.
	ChoiceAsk Choice = iota
	// ChoiceYes runs the stage.
	ChoiceYes
	// ChoiceNo skips the stage.
	ChoiceNo
)

// String implements fmt.Stringer.
func (c Choice) String() string {
	switch c {
	case ChoiceYes:
		return "yes"
	case ChoiceNo:
		return "no"
	default:
		return "ask"
	}
}

// ParseChoice parses yes|no|ask. Empty input is ChoiceAsk.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ask":
		return ChoiceAsk, nil
	case "yes", "y", "true":
		return ChoiceYes, nil
	case "no", "n", "false":
		return ChoiceNo, nil
	default:
		return ChoiceAsk, fmt.Errorf("invalid choice %q (must be yes, no or ask)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Choice) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Choice) UnmarshalText(b []byte) error {
	v, err := ParseChoice(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
