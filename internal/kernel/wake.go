/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package kernel

import (
	"runtime"
	"sync/atomic"
)

// WakeReason identifies what pulled the device out of its sleep loop.
type WakeReason int

const (
	WakeButton WakeReason = iota
	WakeDisplay
	WakeTimer
	WakeMultiple
)

func (w WakeReason) String() string {
	switch w {
	case WakeButton:
		return "Button"
	case WakeDisplay:
		return "Display"
	case WakeTimer:
		return "Timer"
	default:
		return "Multiple"
	}
}

// WakeFlags is a set of pending wake sources, set by ISR-equivalent
// producers and drained by the main loop. The zero value is ready to use.
type WakeFlags struct {
	button  atomic.Bool
	display atomic.Bool
	timer   atomic.Bool
}

// SignalButton records that the power button triggered a wake.
func (w *WakeFlags) SignalButton() { w.button.Store(true) }

// SignalDisplay records that the display finished a refresh.
func (w *WakeFlags) SignalDisplay() { w.display.Store(true) }

// SignalTimer records a timer tick.
func (w *WakeFlags) SignalTimer() { w.timer.Store(true) }

// TakeWakeReason atomically reads and clears every pending flag, folding
// more than one simultaneous source into WakeMultiple.
func (w *WakeFlags) TakeWakeReason() (WakeReason, bool) {
	button := w.button.CompareAndSwap(true, false)
	display := w.display.CompareAndSwap(true, false)
	timer := w.timer.CompareAndSwap(true, false)

	switch {
	case !button && !display && !timer:
		return 0, false
	case button && !display && !timer:
		return WakeButton, true
	case !button && display && !timer:
		return WakeDisplay, true
	case !button && !display && timer:
		return WakeTimer, true
	default:
		return WakeMultiple, true
	}
}

// HasPendingWake reports whether any wake source is set, without
// clearing it.
func (w *WakeFlags) HasPendingWake() bool {
	return w.button.Load() || w.display.Load() || w.timer.Load()
}

// IsButtonPending, IsDisplayPending and IsTimerPending check one source
// without clearing it.
func (w *WakeFlags) IsButtonPending() bool  { return w.button.Load() }
func (w *WakeFlags) IsDisplayPending() bool { return w.display.Load() }
func (w *WakeFlags) IsTimerPending() bool   { return w.timer.Load() }

// ClearAllFlags drops every pending wake source without reporting them.
func (w *WakeFlags) ClearAllFlags() {
	w.button.Store(false)
	w.display.Store(false)
	w.timer.Store(false)
}

// PendingFlags returns the raw (button, display, timer) flag states.
func (w *WakeFlags) PendingFlags() (bool, bool, bool) {
	return w.button.Load(), w.display.Load(), w.timer.Load()
}

// SleepUntilWake parks until a wake source fires, yielding between polls.
// On real hardware this loop is backed by a WFI instruction woken by a
// GPIO interrupt; on a host build there's no interrupt to wait for, so it
// cooperatively yields instead.
func (w *WakeFlags) SleepUntilWake() WakeReason {
	for {
		if reason, ok := w.TakeWakeReason(); ok {
			return reason
		}
		runtime.Gosched()
	}
}

// TryWake is a non-blocking check: it returns the pending wake reason, if
// any, without looping.
func (w *WakeFlags) TryWake() (WakeReason, bool) {
	return w.TakeWakeReason()
}
