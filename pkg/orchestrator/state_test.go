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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flightdesk/flightdeploy/pkg/errors"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateInit, StatePrereqCheck, true},
		{StatePrereqCheck, StateConfirm, true},
		{StateConfirm, StatePublish, true},
		{StateConfirm, StateCancelled, true},
		{StatePublish, StateRewrite, true},
		{StateRewrite, StateApply, true},
		{StateRewrite, StateDone, true},
		{StateApply, StateVerify, true},
		{StateVerify, StateSeed, true},
		{StateVerify, StateProbe, true},
		{StateVerify, StateDone, true},
		{StateSeed, StateProbe, true},
		{StateProbe, StateDone, true},
		{StateApply, StateFailed, true},
		{StateInit, StateFailed, true},

		{StateInit, StateApply, false},
		{StateConfirm, StateApply, false},
		{StatePublish, StateApply, false},
		{StateApply, StateDone, false},
		{StateProbe, StateSeed, false},
		{StateDone, StateFailed, false},
		{StateCancelled, StatePublish, false},
		{StateFailed, StateInit, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := transition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateApply.Terminal())
}

func TestSummaryRows(t *testing.T) {
	s := &RunSummary{RunID: "abc", FinalState: StateDone, Warnings: []string{"verify: pods pending"}}
	rows := s.TableRows()
	assert.Equal(t, []string{"STEP", "ITEM", "RESULT"}, s.TableHeader())
	assert.Equal(t, []string{"Warning", "", "verify: pods pending"}, rows[0])
	assert.Equal(t, "Run", rows[len(rows)-1][0])
	assert.Contains(t, rows[len(rows)-1][2], "done")
	assert.Equal(t, "Prereq-Check", title(string(StatePrereqCheck)))
}
