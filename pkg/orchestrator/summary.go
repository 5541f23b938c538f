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
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flightdesk/flightdeploy/pkg/config"
	"github.com/flightdesk/flightdeploy/pkg/deploy"
	"github.com/flightdesk/flightdeploy/pkg/manifest"
	"github.com/flightdesk/flightdeploy/pkg/publisher"
	"github.com/flightdesk/flightdeploy/pkg/stages"
	"github.com/flightdesk/flightdeploy/pkg/verify"
)

// RunSummary describes one deployment run from start to its final state.
type RunSummary struct {
	RunID      string                `json:"runId" yaml:"runId"`
	Target     config.Target         `json:"target" yaml:"target"`
	States     []State               `json:"states" yaml:"states"`
	Published  []publisher.Result    `json:"published,omitempty" yaml:"published,omitempty"`
	Rewritten  []manifest.FileChange `json:"rewritten,omitempty" yaml:"rewritten,omitempty"`
	Tiers      []deploy.TierResult   `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	Report     *verify.Report        `json:"report,omitempty" yaml:"report,omitempty"`
	Seed       *stages.SeedSummary   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Probe      *stages.ProbeSummary  `json:"probe,omitempty" yaml:"probe,omitempty"`
	Warnings   []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error      string                `json:"error,omitempty" yaml:"error,omitempty"`
	FinalState State                 `json:"finalState" yaml:"finalState"`
	Duration   time.Duration         `json:"duration" yaml:"duration"`
}

// Current returns the last state entered.
func (s *RunSummary) Current() State {
	if len(s.States) == 0 {
		return StateInit
	}
	return s.States[len(s.States)-1]
}

// Visited reports whether state was entered during the run.
func (s *RunSummary) Visited(state State) bool {
	for _, v := range s.States {
		if v == state {
			return true
		}
	}
	return false
}

// title is not shared: a Caser keeps state between calls.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// TableHeader implements serializer.Tabular.
func (s *RunSummary) TableHeader() []string {
	return []string{"STEP", "ITEM", "RESULT"}
}

// TableRows implements serializer.Tabular.
func (s *RunSummary) TableRows() [][]string {
	var rows [][]string
	add := func(step State, item, result string) {
		rows = append(rows, []string{title(string(step)), item, result})
	}

	for _, r := range s.Published {
		res := "pushed"
		if r.Digest != "" {
			res = r.Digest
		}
		add(StatePublish, r.Reference, res)
	}
	for _, c := range s.Rewritten {
		res := "unchanged"
		if c.Changed {
			res = strconv.Itoa(c.Replacements) + " image(s) updated"
		}
		add(StateRewrite, c.Path, res)
	}
	for _, t := range s.Tiers {
		res := string(t.Readiness)
		if t.Skipped {
			res = "skipped: " + t.SkipReason
		}
		add(StateApply, title(t.Tier), fmt.Sprintf("%s (%s)", res, t.Duration.Round(time.Millisecond)))
	}
	if s.Report != nil {
		res := "healthy"
		if !s.Report.OverallHealthy {
			res = "unhealthy: " + strings.Join(s.Report.UnhealthyPods, ",")
		}
		add(StateVerify, s.Report.Namespace, res)
	}
	if s.Seed != nil {
		add(StateSeed, "flights", fmt.Sprintf("%d/%d loaded, %d stored", s.Seed.Succeeded, s.Seed.Attempted, s.Seed.Stored))
		for _, c := range s.Seed.Searches {
			res := fmt.Sprintf("%d results", c.Results)
			if c.Error != "" {
				res = "failed: " + c.Error
			}
			add(StateSeed, c.Query, res)
		}
	}
	if s.Probe != nil {
		add(StateProbe, s.Probe.URL, fmt.Sprintf("mean %s over %d samples, %d failed",
			s.Probe.Mean.Round(time.Millisecond), len(s.Probe.Samples), s.Probe.Failures))
	}
	for _, w := range s.Warnings {
		rows = append(rows, []string{"Warning", "", w})
	}

	final := string(s.FinalState)
	if s.Error != "" {
		final += ": " + s.Error
	}
	rows = append(rows, []string{"Run", s.RunID, fmt.Sprintf("%s in %s", final, s.Duration.Round(time.Millisecond))})
	return rows
}
