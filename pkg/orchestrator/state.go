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
	"slices"

	"github.com/flightdesk/flightdeploy/pkg/errors"
)

// State is a step of the deployment run.
type State string

const (
	StateInit        State = "init"
	StatePrereqCheck State = "prereq-check"
	StateConfirm     State = "confirm"
	StatePublish     State = "publish"
	StateRewrite     State = "rewrite"
	StateApply       State = "apply"
	StateVerify      State = "verify"
	StateSeed        State = "seed"
	StateProbe       State = "probe"
	StateDone        State = "done"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

// transitions lists the forward edges of the run. Failed is reachable from
// every non-terminal state and is not listed.
var transitions = map[State][]State{
	StateInit:        {StatePrereqCheck},
	StatePrereqCheck: {StateConfirm},
	StateConfirm:     {StatePublish, StateCancelled},
	StatePublish:     {StateRewrite},
	StateRewrite:     {StateApply, StateDone},
	StateApply:       {StateVerify},
	StateVerify:      {StateSeed, StateProbe, StateDone},
	StateSeed:        {StateProbe, StateDone},
	StateProbe:       {StateDone},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

func (s State) String() string {
	return string(s)
}

// transition validates the edge from -> to.
func transition(from, to State) error {
	if from.Terminal() {
		return errors.New(errors.ErrCodeInternal, fmt.Sprintf("no transition out of terminal state %s", from))
	}
	if to == StateFailed || slices.Contains(transitions[from], to) {
		return nil
	}
	return errors.New(errors.ErrCodeInternal, fmt.Sprintf("undefined transition %s -> %s", from, to))
}
