/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import "time"

const (
	debounceDelay  = 30 * time.Millisecond
	longPressDelay = 600 * time.Millisecond
	repeatDelay    = 150 * time.Millisecond
)

// EventKind distinguishes the four shapes an Event can take.
type EventKind int

const (
	Press EventKind = iota
	Release
	LongPress
	Repeat
)

// Event is one input event returned from Driver.Poll.
type Event struct {
	Kind   EventKind
	Button Button
}

// Hardware is the raw input surface a Driver reads from: the power
// button's digital level and the two ADC ladder rows' millivolt readings.
// No ADC/GPIO library appears anywhere in the example pack, so this stays
// a small local interface for the board support package to implement.
type Hardware interface {
	PowerPressed() (bool, error)
	ReadRow1MV() (uint16, error)
	ReadRow2MV() (uint16, error)
}

// Clock abstracts time.Now so tests can drive the debounce/long-press/
// repeat state machine without real delays.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// eventQueue buffers up to two events per poll cycle, since a single
// state transition can produce both a Release and a Press.
type eventQueue struct {
	buf  [2]*Event
	read int
}

func (q *eventQueue) push(ev Event) {
	for i := range q.buf {
		if q.buf[i] == nil {
			e := ev
			q.buf[i] = &e
			return
		}
	}
}

func (q *eventQueue) pop() (Event, bool) {
	for q.read < len(q.buf) {
		idx := q.read
		q.read++
		if q.buf[idx] != nil {
			ev := *q.buf[idx]
			q.buf[idx] = nil
			return ev, true
		}
	}
	q.read = 0
	return Event{}, false
}

func (q *eventQueue) empty() bool {
	for _, e := range q.buf {
		if e != nil {
			return false
		}
	}
	return true
}

// Driver turns raw button readings into debounced press/release events
// plus long-press and auto-repeat while a button stays held.
type Driver struct {
	hw    Hardware
	clock Clock

	stable         *Button
	candidate      *Button
	candidateSince time.Time
	pressSince     time.Time
	longPressFired bool
	lastRepeat     time.Time
	queue          eventQueue
}

// New returns a Driver reading from hw, using the real system clock.
func New(hw Hardware) *Driver {
	now := time.Now()
	return &Driver{hw: hw, clock: realClock{}, candidateSince: now, pressSince: now, lastRepeat: now}
}

// NewWithClock is New but with an injectable Clock, for tests.
func NewWithClock(hw Hardware, clock Clock) *Driver {
	now := clock.Now()
	return &Driver{hw: hw, clock: clock, candidateSince: now, pressSince: now, lastRepeat: now}
}

// Poll reads the current input state and returns the next pending event,
// if any. Call it regularly (every 10-20ms in the kernel's input task).
func (d *Driver) Poll() (Event, bool, error) {
	if !d.queue.empty() {
		ev, ok := d.queue.pop()
		return ev, ok, nil
	}

	raw, err := d.readRaw()
	if err != nil {
		return Event{}, false, err
	}
	now := d.clock.Now()

	if !sameButton(raw, d.candidate) {
		d.candidate = raw
		d.candidateSince = now
	}

	debounced := d.stable
	if now.Sub(d.candidateSince) >= debounceDelay {
		debounced = d.candidate
	}

	if !sameButton(debounced, d.stable) {
		if d.stable != nil {
			d.queue.push(Event{Kind: Release, Button: *d.stable})
		}
		if debounced != nil {
			d.queue.push(Event{Kind: Press, Button: *debounced})
			d.pressSince = now
			d.longPressFired = false
			d.lastRepeat = now
		}
		d.stable = debounced
		ev, ok := d.queue.pop()
		return ev, ok, nil
	}

	if d.stable != nil {
		held := now.Sub(d.pressSince)
		if !d.longPressFired && held >= longPressDelay {
			d.longPressFired = true
			d.lastRepeat = now
			return Event{Kind: LongPress, Button: *d.stable}, true, nil
		}
		if d.longPressFired && now.Sub(d.lastRepeat) >= repeatDelay {
			d.lastRepeat = now
			return Event{Kind: Repeat, Button: *d.stable}, true, nil
		}
	}

	return Event{}, false, nil
}

func sameButton(a, b *Button) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// readRaw reports the currently pressed button, if any, before debouncing.
// The power button takes priority since it's a direct digital read; the
// two ADC ladders can only ever report one button each.
func (d *Driver) readRaw() (*Button, error) {
	pressed, err := d.hw.PowerPressed()
	if err != nil {
		return nil, err
	}
	if pressed {
		b := Power
		return &b, nil
	}

	mv1, err := d.hw.ReadRow1MV()
	if err != nil {
		return nil, err
	}
	if b, ok := DecodeLadder(mv1, Row1Thresholds); ok {
		return &b, nil
	}

	mv2, err := d.hw.ReadRow2MV()
	if err != nil {
		return nil, err
	}
	if b, ok := DecodeLadder(mv2, Row2Thresholds); ok {
		return &b, nil
	}

	return nil, nil
}
