/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render implements the render orchestrator: it decides whether a
// frame gets a partial or a full refresh, tracks the ghost-clear schedule
// and the "red stale" bookkeeping a skipped phase-3 sync leaves behind, and
// drives internal/panel through the resulting refresh while pumping input
// and app work during the waveform wait.
package render

import "pulpcore/internal/strip"

// Rect is a logical (document-space) rectangle. It reuses strip.Region's
// shape so callers can pass window coordinates through without conversion.
type Rect = strip.Region

func (r Rect) empty() bool { return r.W <= 0 || r.H <= 0 }

func union(a, b Rect) Rect {
	if a.empty() {
		return b
	}
	if b.empty() {
		return a
	}
	x0 := min(a.X, b.X)
	y0 := min(a.Y, b.Y)
	x1 := max(a.X+a.W, b.X+b.W)
	y1 := max(a.Y+a.H, b.Y+b.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func intersects(a, b Rect) bool {
	if a.empty() || b.empty() {
		return false
	}
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// DirtyTag is the three-valued redraw state of a pending frame request.
type DirtyTag int

const (
	DirtyNone DirtyTag = iota
	DirtyPartial
	DirtyFull
)

// DirtyRegion couples a redraw tag to the rectangle it covers. Multiple
// partial marks within one frame coalesce to their bounding-box union; any
// full mark latches Full for the rest of the frame regardless of what
// comes after.
type DirtyRegion struct {
	Tag  DirtyTag
	Rect Rect
}

// Mark folds a new (tag, rect) pair into d.
func (d *DirtyRegion) Mark(tag DirtyTag, rect Rect) {
	if tag == DirtyNone {
		return
	}
	if d.Tag == DirtyFull {
		return
	}
	if tag == DirtyFull {
		d.Tag = DirtyFull
		d.Rect = Rect{}
		return
	}
	if d.Tag == DirtyNone {
		d.Tag = DirtyPartial
		d.Rect = rect
		return
	}
	d.Rect = union(d.Rect, rect)
}
