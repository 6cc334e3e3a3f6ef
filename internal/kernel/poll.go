/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package kernel

import "fmt"

// BaseTickMS is the kernel's base timer tick interval.
const BaseTickMS = 10

// PollRate is how often the input task actually samples hardware,
// expressed as a multiple of BaseTickMS.
type PollRate int

const (
	// PollFast samples every tick: responsive debouncing while active.
	PollFast PollRate = iota
	// PollNormal samples every 5th tick.
	PollNormal
	// PollSlow samples every 10th tick: power-saving when idle.
	PollSlow
)

func (r PollRate) divisor() uint32 {
	switch r {
	case PollFast:
		return 1
	case PollNormal:
		return 5
	default:
		return 10
	}
}

// IntervalMS is the effective polling interval at this rate.
func (r PollRate) IntervalMS() uint32 { return r.divisor() * BaseTickMS }

func (r PollRate) String() string {
	switch r {
	case PollFast:
		return fmt.Sprintf("Fast(%dms)", r.IntervalMS())
	case PollNormal:
		return fmt.Sprintf("Normal(%dms)", r.IntervalMS())
	default:
		return fmt.Sprintf("Slow(%dms)", r.IntervalMS())
	}
}

const (
	fastToNormalIdleTicks  = 20 // 20 x 10ms = 200ms
	normalToSlowIdleTicks  = 20 // 20 x 50ms = 1000ms
)

// AdaptivePoller throttles how often input hardware is actually sampled:
// fast while the user is interacting, backing off to slower rates after
// sustained idle so the device spends less time awake.
type AdaptivePoller struct {
	rate      PollRate
	tickCount uint32
	idleCount uint32
}

// NewAdaptivePoller returns a poller starting at PollFast.
func NewAdaptivePoller() *AdaptivePoller {
	return &AdaptivePoller{rate: PollFast}
}

// Tick advances the base-tick counter and reports whether this tick is
// due for an actual hardware sample at the current rate.
func (p *AdaptivePoller) Tick() bool {
	p.tickCount++
	if p.tickCount >= p.rate.divisor() {
		p.tickCount = 0
		return true
	}
	return false
}

// OnActivity resets the poller to its fastest rate; call this whenever a
// real input event fires.
func (p *AdaptivePoller) OnActivity() {
	p.rate = PollFast
	p.idleCount = 0
}

// OnIdle records one more idle sample and backs the rate off once enough
// consecutive idle samples have accumulated.
func (p *AdaptivePoller) OnIdle() {
	p.idleCount++
	switch p.rate {
	case PollFast:
		if p.idleCount >= fastToNormalIdleTicks {
			p.rate = PollNormal
			p.idleCount = 0
		}
	case PollNormal:
		if p.idleCount >= normalToSlowIdleTicks {
			p.rate = PollSlow
			p.idleCount = 0
		}
	case PollSlow:
		// already at the slowest rate
	}
}

// Rate returns the poller's current rate.
func (p *AdaptivePoller) Rate() PollRate { return p.rate }

// IntervalMS returns the current rate's effective polling interval.
func (p *AdaptivePoller) IntervalMS() uint32 { return p.rate.IntervalMS() }

// IdleCount returns the number of consecutive idle samples observed at
// the current rate.
func (p *AdaptivePoller) IdleCount() uint32 { return p.idleCount }

// SetRate forces a specific rate, clearing the idle/tick counters.
func (p *AdaptivePoller) SetRate(rate PollRate) {
	p.rate = rate
	p.idleCount = 0
	p.tickCount = 0
}

// Reset returns the poller to its initial state.
func (p *AdaptivePoller) Reset() {
	*p = *NewAdaptivePoller()
}
