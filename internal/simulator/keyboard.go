/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package simulator

import (
	"sync"

	"fyne.io/fyne/v2"

	"pulpcore/internal/input"
)

// KeyToButton maps the keyboard keys the simulator window recognizes onto
// the device's physical buttons.
var KeyToButton = map[fyne.KeyName]input.Button{
	fyne.KeyRight:  input.Right,
	fyne.KeyLeft:   input.Left,
	fyne.KeyReturn: input.Confirm,
	fyne.KeyEscape: input.Back,
	fyne.KeyUp:     input.VolUp,
	fyne.KeyDown:   input.VolDown,
}

// PowerKey is handled outside KeyToButton since Power is a digital level
// (input.Hardware.PowerPressed), not a ladder voltage.
const PowerKey = fyne.KeyP

// KeyboardHardware implements input.Hardware by translating held keyboard
// keys into the millivolt readings the real ladder rows would produce, so
// internal/input's actual debounce/long-press/repeat state machine runs
// against these readings unmodified — the simulator never bypasses that
// logic, only the ADC underneath it.
type KeyboardHardware struct {
	mu      sync.Mutex
	pressed map[input.Button]bool
	power   bool
}

// NewKeyboardHardware returns a KeyboardHardware with nothing held.
func NewKeyboardHardware() *KeyboardHardware {
	return &KeyboardHardware{pressed: make(map[input.Button]bool)}
}

// HandleKey updates held state from a fyne key down/up event. Unrecognized
// keys are ignored.
func (k *KeyboardHardware) HandleKey(name fyne.KeyName, down bool) {
	if name == PowerKey {
		k.mu.Lock()
		k.power = down
		k.mu.Unlock()
		return
	}
	b, ok := KeyToButton[name]
	if !ok {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if down {
		k.pressed[b] = true
	} else {
		delete(k.pressed, b)
	}
}

func (k *KeyboardHardware) PowerPressed() (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.power, nil
}

func (k *KeyboardHardware) ReadRow1MV() (uint16, error) { return k.readRow(1), nil }
func (k *KeyboardHardware) ReadRow2MV() (uint16, error) { return k.readRow(2), nil }

func (k *KeyboardHardware) readRow(row int) uint16 {
	k.mu.Lock()
	defer k.mu.Unlock()
	for b := range k.pressed {
		if r, mv, ok := input.MVForButton(b); ok && r == row {
			return mv
		}
	}
	return input.IdleMV
}
