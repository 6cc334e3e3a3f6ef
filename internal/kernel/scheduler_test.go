/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopReturnsHighestPriorityFirst(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Push(AppWork))
	require.NoError(t, s.Push(Render))
	require.NoError(t, s.Push(UpdateStatusBar))
	require.NoError(t, s.Push(PollInput))

	j, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, Render, j) // high-tier, pushed first within tier

	j, ok = s.Pop()
	require.True(t, ok)
	require.Equal(t, PollInput, j)

	j, ok = s.Pop()
	require.True(t, ok)
	require.Equal(t, AppWork, j)

	j, ok = s.Pop()
	require.True(t, ok)
	require.Equal(t, UpdateStatusBar, j)

	_, ok = s.Pop()
	require.False(t, ok)
}

func TestPushRejectsWhenTierFull(t *testing.T) {
	s := NewScheduler()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Push(Render))
	}
	err := s.Push(Render)
	require.ErrorAs(t, err, &ErrQueueFull{})
}

func TestPushUniqueDeduplicatesWithinTier(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.PushUnique(Render))
	require.NoError(t, s.PushUnique(Render))
	require.NoError(t, s.PushUnique(Render))

	_, ok := s.Pop()
	require.True(t, ok)
	_, ok = s.Pop()
	require.False(t, ok, "duplicate pushes should have been dropped")
}

func TestJobPriorityAssignment(t *testing.T) {
	require.Equal(t, HighPriority, PollInput.priority())
	require.Equal(t, HighPriority, Render.priority())
	require.Equal(t, NormalPriority, AppWork.priority())
	require.Equal(t, NormalPriority, UpdateStatusBar.priority())
}
