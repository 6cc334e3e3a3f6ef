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

func TestTickFiresEveryBaseTickAtFastRate(t *testing.T) {
	p := NewAdaptivePoller()
	require.True(t, p.Tick())
	require.True(t, p.Tick())
}

func TestTickFiresEvery5thAtNormalRate(t *testing.T) {
	p := NewAdaptivePoller()
	p.SetRate(PollNormal)
	for i := 0; i < 4; i++ {
		require.False(t, p.Tick())
	}
	require.True(t, p.Tick())
}

func TestOnIdleTransitionsFastToNormalAfter20(t *testing.T) {
	p := NewAdaptivePoller()
	for i := 0; i < 19; i++ {
		p.OnIdle()
	}
	require.Equal(t, PollFast, p.Rate())
	p.OnIdle()
	require.Equal(t, PollNormal, p.Rate())
	require.Equal(t, uint32(0), p.IdleCount())
}

func TestOnIdleTransitionsNormalToSlowAfter20(t *testing.T) {
	p := NewAdaptivePoller()
	p.SetRate(PollNormal)
	for i := 0; i < 20; i++ {
		p.OnIdle()
	}
	require.Equal(t, PollSlow, p.Rate())
}

func TestOnActivityResetsToFast(t *testing.T) {
	p := NewAdaptivePoller()
	p.SetRate(PollSlow)
	p.OnActivity()
	require.Equal(t, PollFast, p.Rate())
	require.Equal(t, uint32(0), p.IdleCount())
}

func TestIntervalMSMatchesRate(t *testing.T) {
	require.Equal(t, uint32(10), PollFast.IntervalMS())
	require.Equal(t, uint32(50), PollNormal.IntervalMS())
	require.Equal(t, uint32(100), PollSlow.IntervalMS())
}
