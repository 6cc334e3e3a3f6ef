/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulpcore/internal/panel"
	"pulpcore/internal/strip"
)

type fakeBus struct {
	commands      []byte
	dataLens      []int
	busyCountdown int
}

func (f *fakeBus) WriteCommand(cmd byte) error {
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakeBus) WriteData(data []byte) error {
	f.dataLens = append(f.dataLens, len(data))
	return nil
}

func (f *fakeBus) SetReset(high bool) error { return nil }

func (f *fakeBus) Busy() (bool, error) {
	if f.busyCountdown > 0 {
		f.busyCountdown--
		return true, nil
	}
	return false, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Now() time.Time        { return c.now }

// scriptedPump replays a fixed sequence of (tag, rect, transition) triples,
// one per Pump call, then returns DirtyNone with no transition forever.
type scriptedPump struct {
	calls int
	steps []pumpStep
}

type pumpStep struct {
	tag        DirtyTag
	rect       Rect
	transition func()
}

func (p *scriptedPump) Pump() (DirtyTag, Rect, func()) {
	if p.calls < len(p.steps) {
		s := p.steps[p.calls]
		p.calls++
		return s.tag, s.rect, s.transition
	}
	p.calls++
	return DirtyNone, Rect{}, nil
}

func newOrchestrator(busyCountdown int) (*Orchestrator, *fakeBus) {
	bus := &fakeBus{busyCountdown: busyCountdown}
	p := panel.NewWithClock(bus, &fakeClock{})
	var win strip.Buffer
	return NewOrchestrator(p, &win), bus
}

func blankFrame() Frame {
	return Frame{App: func(*strip.Buffer) {}}
}

func TestRunFrameNoneIsNoop(t *testing.T) {
	o, bus := newOrchestrator(0)
	require.NoError(t, o.RunFrame(Request{Kind: RequestNone}, blankFrame(), Rect{}, nil))
	require.Empty(t, bus.commands)
}

func TestRunFrameFullClearsInitialRefreshAndCounters(t *testing.T) {
	o, _ := newOrchestrator(0)
	require.True(t, o.panel.NeedsInitialRefresh())

	req := Request{Kind: RequestFull}
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, nil))

	require.False(t, o.panel.NeedsInitialRefresh())
	require.Equal(t, uint32(0), o.PartialCount())
	stale, _ := o.RedStale()
	require.False(t, stale)
}

func TestRunFramePartialBeforeInitialRefreshForcesFull(t *testing.T) {
	o, _ := newOrchestrator(0)
	require.True(t, o.panel.NeedsInitialRefresh())

	req := Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 40, H: 100}}
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, nil))

	require.False(t, o.panel.NeedsInitialRefresh())
	require.Equal(t, uint32(0), o.PartialCount(), "a forced full refresh resets the partial counter")
}

func TestRunFramePartialCleanSyncIncrementsCounter(t *testing.T) {
	o, bus := newOrchestrator(0)
	require.NoError(t, o.RunFrame(Request{Kind: RequestFull}, blankFrame(), Rect{}, nil))

	bus.busyCountdown = 3
	pump := &scriptedPump{}
	req := Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 40, H: 100}}
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, pump))

	require.Equal(t, uint32(1), o.PartialCount())
	stale, _ := o.RedStale()
	require.False(t, stale)
	require.Equal(t, 3, pump.calls, "pump should be polled once per busy tick")
}

func TestRunFramePartialDirtyDuringWaveformSetsRedStale(t *testing.T) {
	o, bus := newOrchestrator(0)
	require.NoError(t, o.RunFrame(Request{Kind: RequestFull}, blankFrame(), Rect{}, nil))

	bus.busyCountdown = 2
	dirtyRect := Rect{X: 0, Y: 0, W: 40, H: 200}
	pump := &scriptedPump{steps: []pumpStep{
		{tag: DirtyPartial, rect: dirtyRect},
	}}

	req := Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 40, H: 100}}
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, pump))

	stale, region := o.RedStale()
	require.True(t, stale)
	require.Equal(t, Rect{X: 0, Y: 0, W: 40, H: 200}, region)
	require.Equal(t, uint32(1), o.PartialCount(), "counter still advances even when phase-3 is skipped")
}

func TestRunFramePartialRecoversRedStaleRegion(t *testing.T) {
	o, bus := newOrchestrator(0)
	require.NoError(t, o.RunFrame(Request{Kind: RequestFull}, blankFrame(), Rect{}, nil))

	bus.busyCountdown = 1
	dirty := &scriptedPump{steps: []pumpStep{{tag: DirtyPartial, rect: Rect{X: 0, Y: 0, W: 40, H: 200}}}}
	require.NoError(t, o.RunFrame(
		Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 40, H: 100}},
		blankFrame(), Rect{}, dirty,
	))
	stale, _ := o.RedStale()
	require.True(t, stale)

	bus.busyCountdown = 1
	clean := &scriptedPump{}
	require.NoError(t, o.RunFrame(
		Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 50, W: 40, H: 60}},
		blankFrame(), Rect{}, clean,
	))

	stale, _ = o.RedStale()
	require.False(t, stale, "an overlapping clean partial should clear the stale bookkeeping")
}

func TestRunFramePartialReachingThresholdRunsFull(t *testing.T) {
	o, bus := newOrchestrator(0)
	o.SetGhostClearThreshold(2)
	require.NoError(t, o.RunFrame(Request{Kind: RequestFull}, blankFrame(), Rect{}, nil))

	req := Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 40, H: 100}}
	bus.busyCountdown = 0
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, nil))
	require.Equal(t, uint32(1), o.PartialCount())

	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, nil))
	require.Equal(t, uint32(2), o.PartialCount())

	// Counter is now at the threshold, so the next partial request forces
	// a full refresh instead, resetting the counter to zero.
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, nil))
	require.Equal(t, uint32(0), o.PartialCount())
}

func TestRunFrameDeferredTransitionAppliesOnceAfterWaveform(t *testing.T) {
	o, bus := newOrchestrator(0)
	require.NoError(t, o.RunFrame(Request{Kind: RequestFull}, blankFrame(), Rect{}, nil))

	bus.busyCountdown = 3
	applied := 0
	pump := &scriptedPump{steps: []pumpStep{
		{transition: func() { applied++ }},
		{transition: func() { applied++ }}, // must be ignored: first one wins
	}}

	req := Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 40, H: 100}}
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, pump))

	require.Equal(t, 1, applied)
}

func TestRunFramePartialDegenerateRegionIsNoop(t *testing.T) {
	o, bus := newOrchestrator(0)
	require.NoError(t, o.RunFrame(Request{Kind: RequestFull}, blankFrame(), Rect{}, nil))
	bus.commands = nil
	bus.dataLens = nil

	req := Request{Kind: RequestPartial, Rect: Rect{X: 0, Y: 0, W: 0, H: 0}}
	require.NoError(t, o.RunFrame(req, blankFrame(), Rect{}, nil))

	require.Empty(t, bus.commands)
	require.Equal(t, uint32(0), o.PartialCount())
}

func TestDirtyRegionMarkCoalescesAndLatchesFull(t *testing.T) {
	var d DirtyRegion
	d.Mark(DirtyPartial, Rect{X: 0, Y: 0, W: 10, H: 10})
	d.Mark(DirtyPartial, Rect{X: 5, Y: 5, W: 10, H: 10})
	require.Equal(t, DirtyPartial, d.Tag)
	require.Equal(t, Rect{X: 0, Y: 0, W: 15, H: 15}, d.Rect)

	d.Mark(DirtyFull, Rect{})
	require.Equal(t, DirtyFull, d.Tag)

	// Once latched full, further partial marks must not downgrade it.
	d.Mark(DirtyPartial, Rect{X: 100, Y: 100, W: 5, H: 5})
	require.Equal(t, DirtyFull, d.Tag)
}
