/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package input decodes the device's physical controls: two ADC
// resistance-ladder rows plus one digital power button, debounced and
// turned into press/release/long-press/repeat events, and the battery
// divider's millivolt-to-percentage scaling.
package input

// Button names every physical control on the device. Both ADC ladder rows
// and the discrete power button collapse into this single enum, since the
// hardware can only ever report one pressed button at a time.
type Button int

const (
	Right Button = iota
	Left
	Confirm
	Back
	VolUp
	VolDown
	Power
)

func (b Button) String() string {
	switch b {
	case Right:
		return "Right"
	case Left:
		return "Left"
	case Confirm:
		return "Confirm"
	case Back:
		return "Back"
	case VolUp:
		return "Vol Up"
	case VolDown:
		return "Vol Down"
	case Power:
		return "Power"
	default:
		return "Unknown"
	}
}

// threshold is one entry of a resistance-ladder lookup table: a reading
// matches if it falls within tolerance millivolts of center.
type threshold struct {
	center    uint16
	tolerance uint16
	button    Button
}

// DefaultTolerance is the tolerance used by every threshold table entry
// except the near-ground ones, which use a tighter band.
const DefaultTolerance = 150

// Row1Thresholds decodes GPIO1's navigation-cluster ladder.
var Row1Thresholds = []threshold{
	{3, 50, Right},
	{1113, DefaultTolerance, Left},
	{1984, DefaultTolerance, Back},
	{2556, DefaultTolerance, Confirm},
}

// Row2Thresholds decodes GPIO2's volume ladder.
var Row2Thresholds = []threshold{
	{3, 50, VolDown},
	{1659, DefaultTolerance, VolUp},
}

// IdleMV is a millivolt reading that brackets no threshold on either row,
// representing no button held on that ladder.
const IdleMV = 0xFFF

// MVForButton returns the row (1 or 2) and the center millivolt reading a
// real ladder would report for b, for harnesses (a hardware-in-the-loop
// test rig, the desktop simulator) that need to synthesize Hardware
// readings without duplicating the threshold tables above. ok is false for
// Power, which is read as a digital level rather than a ladder voltage.
func MVForButton(b Button) (row int, mv uint16, ok bool) {
	for _, th := range Row1Thresholds {
		if th.button == b {
			return 1, th.center, true
		}
	}
	for _, th := range Row2Thresholds {
		if th.button == b {
			return 2, th.center, true
		}
	}
	return 0, 0, false
}

// DecodeLadder returns the button whose threshold entry brackets mv, or
// (0, false) if none match.
func DecodeLadder(mv uint16, thresholds []threshold) (Button, bool) {
	for _, th := range thresholds {
		low := satSub(th.center, th.tolerance)
		high := satAdd(th.center, th.tolerance)
		if mv >= low && mv <= high {
			return th.button, true
		}
	}
	return 0, false
}

func satSub(a, b uint16) uint16 {
	if b > a {
		return 0
	}
	return a - b
}

func satAdd(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	if sum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sum)
}
