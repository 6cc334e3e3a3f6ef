/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"runtime"

	"pulpcore/internal/panel"
	"pulpcore/internal/strip"
)

// DefaultGhostClearThreshold is the number of partial refreshes the
// orchestrator allows before forcing a full ghost-clearing refresh.
const DefaultGhostClearThreshold = 6

// RequestKind says what kind of refresh a frame wants.
type RequestKind int

const (
	RequestNone RequestKind = iota
	RequestPartial
	RequestFull
)

// Request is one frame's redraw ask, as coalesced by a DirtyRegion.
type Request struct {
	Kind RequestKind
	Rect Rect
}

// Layer draws one part of a frame (status bar, app, overlay, feedback bar)
// into win. A nil Layer draws nothing.
type Layer func(win *strip.Buffer)

// Frame composes the draw order the spec fixes for every refresh: status
// bar (if the refresh region overlaps it), the active app, any open
// overlay, then the edge-label feedback bar.
type Frame struct {
	StatusBar   Layer
	App         Layer
	Overlay     Layer
	FeedbackBar Layer
}

func (f Frame) compose(includeStatusBar bool) panel.Draw {
	return func(win *strip.Buffer) {
		if includeStatusBar && f.StatusBar != nil {
			f.StatusBar(win)
		}
		if f.App != nil {
			f.App(win)
		}
		if f.Overlay != nil {
			f.Overlay(win)
		}
		if f.FeedbackBar != nil {
			f.FeedbackBar(win)
		}
	}
}

// WaveformEvents is pumped repeatedly while the panel's BUSY line is
// asserted, so input and app background work are not blocked for the
// ~400-1600ms a refresh waveform runs. Pump returns any newly produced
// dirty state (DirtyNone if none this tick) and, at most once per waveform
// wait, a deferred transition to apply once the wait ends — the first
// transition-producing event in the window wins; later ones are ignored.
type WaveformEvents interface {
	Pump() (tag DirtyTag, rect Rect, transition func())
}

// Orchestrator decides partial vs. full refresh per frame and drives
// internal/panel through it, per spec.md §4.9.
type Orchestrator struct {
	panel *panel.Driver
	win   *strip.Buffer

	threshold    uint32
	partialCount uint32

	redStale       bool
	redStaleRegion Rect
}

// NewOrchestrator returns an Orchestrator driving p through win, using
// DefaultGhostClearThreshold.
func NewOrchestrator(p *panel.Driver, win *strip.Buffer) *Orchestrator {
	return &Orchestrator{panel: p, win: win, threshold: DefaultGhostClearThreshold}
}

// SetGhostClearThreshold overrides the default ghost-clear-every-N count.
func (o *Orchestrator) SetGhostClearThreshold(n uint32) { o.threshold = n }

// PartialCount reports the number of partial refreshes since the last full
// refresh.
func (o *Orchestrator) PartialCount() uint32 { return o.partialCount }

// RedStale reports whether a skipped phase-3 sync left a region whose RED
// plane no longer matches what was displayed.
func (o *Orchestrator) RedStale() (bool, Rect) { return o.redStale, o.redStaleRegion }

// RunFrame executes one frame per req. statusBar is the logical rectangle
// the status bar occupies (used only to decide whether it needs redrawing
// alongside a partial region); pump may be nil if there is no work to
// interleave with the waveform wait.
func (o *Orchestrator) RunFrame(req Request, frame Frame, statusBar Rect, pump WaveformEvents) error {
	switch req.Kind {
	case RequestNone:
		return nil
	case RequestPartial:
		if o.partialCount < o.threshold && !o.panel.NeedsInitialRefresh() {
			return o.runPartial(req.Rect, frame, statusBar, pump)
		}
		return o.runFull(frame, statusBar, pump)
	default: // RequestFull
		return o.runFull(frame, statusBar, pump)
	}
}

func (o *Orchestrator) runPartial(region Rect, frame Frame, statusBar Rect, pump WaveformEvents) error {
	draw := frame.compose(intersects(region, statusBar))

	var rs *panel.RenderState
	var err error
	recovering := o.redStale && intersects(region, o.redStaleRegion)
	if recovering {
		region = union(region, o.redStaleRegion)
		rs, err = o.panel.Phase1BWRedStale(o.win, region.X, region.Y, region.W, region.H, draw)
	} else {
		rs, err = o.panel.Phase1BW(o.win, region.X, region.Y, region.W, region.H, draw)
	}
	if err != nil {
		return err
	}
	if rs == nil {
		// Degenerate region after clipping: no-op, no waveform kicked.
		return nil
	}

	if err := o.panel.PartialStartDU(rs); err != nil {
		return err
	}

	waveDirty, deferred := o.pumpWhileBusy(pump)

	if waveDirty.Tag != DirtyNone {
		staleRegion := region
		if waveDirty.Tag == DirtyPartial {
			staleRegion = union(region, waveDirty.Rect)
		}
		if o.redStale {
			o.redStaleRegion = union(o.redStaleRegion, staleRegion)
		} else {
			o.redStale = true
			o.redStaleRegion = staleRegion
		}
	} else {
		if err := o.panel.Phase3Sync(o.win, rs, draw); err != nil {
			return err
		}
		if err := o.panel.PowerOff(); err != nil {
			return err
		}
		if recovering {
			// region was expanded to cover all of the prior stale area, and
			// the sync completed cleanly: both planes agree again there.
			o.redStale = false
			o.redStaleRegion = Rect{}
		}
	}

	o.partialCount++

	if deferred != nil {
		deferred()
	}
	return nil
}

func (o *Orchestrator) runFull(frame Frame, statusBar Rect, pump WaveformEvents) error {
	draw := frame.compose(true)

	if err := o.panel.WriteFullFrame(o.win, draw); err != nil {
		return err
	}
	if err := o.panel.StartFullUpdate(); err != nil {
		return err
	}

	_, deferred := o.pumpWhileBusy(pump)

	o.panel.FinishFullUpdate()
	o.redStale = false
	o.redStaleRegion = Rect{}
	o.partialCount = 0

	if deferred != nil {
		deferred()
	}
	return nil
}

// pumpWhileBusy polls the panel's BUSY line, pumping pump on every poll
// that still finds it asserted, and returns the coalesced dirty state plus
// the first deferred transition produced. If IsBusy errors out, the wait
// is abandoned per the "rendering never fails" failure semantics — the
// next refresh is simply more likely to land as a full one.
func (o *Orchestrator) pumpWhileBusy(pump WaveformEvents) (DirtyRegion, func()) {
	var acc DirtyRegion
	var deferred func()
	for {
		busy, err := o.panel.IsBusy()
		if err != nil || !busy {
			return acc, deferred
		}
		if pump != nil {
			tag, rect, transition := pump.Pump()
			acc.Mark(tag, rect)
			if deferred == nil && transition != nil {
				deferred = transition
			}
		}
		runtime.Gosched()
	}
}
