/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package panel drives an SSD1677-class e-paper controller: command/data
// framing over SPI, the dual-plane (BW/RED) RAM layout, and the
// split-phase partial and full refresh sequences used by the device's
// render loop. It has no notion of glyphs or layout; callers hand it a
// draw func that fills an internal/strip.Buffer one physical window at a
// time.
package panel

import (
	"time"

	"pulpcore/internal/strip"
)

// Width and Height are the panel's native physical dimensions.
const (
	Width  = 800
	Height = 480

	// SPIFreqMHz is the bus speed this controller is rated for.
	SPIFreqMHz = 20

	powerOffTimeout = 200 * time.Millisecond
)

// SSD1677 command bytes.
const (
	cmdDriverOutputControl = 0x01
	cmdBoosterSoftStart    = 0x0C
	cmdDeepSleep           = 0x10
	cmdDataEntryMode       = 0x11
	cmdSWReset             = 0x12
	cmdTemperatureSensor   = 0x18
	cmdMasterActivation    = 0x20
	cmdDisplayUpdateCtrl1  = 0x21
	cmdDisplayUpdateCtrl2  = 0x22
	cmdWriteRAMBW          = 0x24 // current/new buffer
	cmdWriteRAMRed         = 0x26 // previous buffer (differential)
	cmdBorderWaveform      = 0x3C
	cmdSetRAMXRange        = 0x44
	cmdSetRAMYRange        = 0x45
	cmdSetRAMXCounter      = 0x4E
	cmdSetRAMYCounter      = 0x4F
)

// Bus is the hardware surface a Driver needs: a command/data SPI device, a
// reset line, and a busy-input line. There is no SPI library anywhere in
// the example pack this module was grown from, so this stays a small local
// interface rather than reaching for a driver framework — the caller wires
// it to whatever GPIO/SPI package its board support package provides.
type Bus interface {
	// WriteCommand latches DC low, writes cmd, then returns DC high.
	WriteCommand(cmd byte) error
	// WriteData writes data with DC already high.
	WriteData(data []byte) error
	// SetReset drives the panel's reset line.
	SetReset(high bool) error
	// Busy reports the controller's BUSY pin level (true = busy).
	Busy() (bool, error)
}

// Clock abstracts time.Sleep/time.Now so tests can run without real delays.
type Clock interface {
	Sleep(d time.Duration)
	Now() time.Time
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
func (realClock) Now() time.Time        { return time.Now() }

// RenderState carries the physical region and edge masks computed by
// Phase1BW through to PartialStartDU and Phase3Sync.
type RenderState struct {
	PX, PY, PW, PH int
	LeftMask       byte
	RightMask      byte
}

// Draw fills win (already positioned via strip.Buffer.BeginWindow or
// BeginStrip) with pixel data for the region it currently represents.
type Draw func(win *strip.Buffer)

// Driver drives one SSD1677 panel at a fixed Deg270 rotation (the only
// mounting this spec targets).
type Driver struct {
	bus   Bus
	clock Clock

	powerIsOn      bool
	initDone       bool
	initialRefresh bool
}

// New returns a Driver bound to bus, using the real system clock.
func New(bus Bus) *Driver {
	return &Driver{bus: bus, clock: realClock{}, initialRefresh: true}
}

// NewWithClock is New but with an injectable Clock, for tests.
func NewWithClock(bus Bus, clock Clock) *Driver {
	return &Driver{bus: bus, clock: clock, initialRefresh: true}
}

// NeedsInitialRefresh reports whether a full refresh has never been
// performed since power-on; partial refreshes are refused until then.
func (d *Driver) NeedsInitialRefresh() bool { return d.initialRefresh }

// Reset pulses the panel's hardware reset line.
func (d *Driver) Reset() error {
	if err := d.bus.SetReset(true); err != nil {
		return err
	}
	d.clock.Sleep(20 * time.Millisecond)
	if err := d.bus.SetReset(false); err != nil {
		return err
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.bus.SetReset(true); err != nil {
		return err
	}
	d.clock.Sleep(20 * time.Millisecond)
	return nil
}

// Init resets the panel and runs its power-on command sequence.
func (d *Driver) Init() error {
	if err := d.Reset(); err != nil {
		return err
	}
	return d.initDisplay()
}

// initDisplay matches the GxEPD2 _InitDisplay sequence this controller
// expects: soft reset, temperature sensor select, booster timing, driver
// output control and border waveform, then a full RAM address window.
func (d *Driver) initDisplay() error {
	if err := d.sendCommand(cmdSWReset); err != nil {
		return err
	}
	d.clock.Sleep(10 * time.Millisecond)

	if err := d.sendCommand(cmdTemperatureSensor); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x80}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdBoosterSoftStart); err != nil {
		return err
	}
	if err := d.sendData([]byte{0xAE, 0xC7, 0xC3, 0xC0, 0x80}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdDriverOutputControl); err != nil {
		return err
	}
	if err := d.sendData([]byte{byte((Height - 1) & 0xFF), byte((Height - 1) >> 8), 0x02}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdBorderWaveform); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x01}); err != nil {
		return err
	}

	if err := d.setPartialRAMArea(0, 0, Width, Height); err != nil {
		return err
	}

	d.initDone = true
	return nil
}

// transformRegion maps a logical (document-space) rect to the panel's
// physical RAM addressing space at the fixed Deg270 rotation.
func transformRegion(x, y, w, h int) (int, int, int, int) {
	return y, Height - x - w, h, w
}

// setPartialRAMArea programs the controller's RAM X/Y address window and
// counters. Gates are wired in reverse on this panel, so Y is flipped.
func (d *Driver) setPartialRAMArea(x, y, w, h int) error {
	yFlipped := Height - y - h

	if err := d.sendCommand(cmdDataEntryMode); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x01}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdSetRAMXRange); err != nil {
		return err
	}
	xEnd := x + w - 1
	if err := d.sendData([]byte{byte(x & 0xFF), byte(x >> 8), byte(xEnd & 0xFF), byte(xEnd >> 8)}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdSetRAMYRange); err != nil {
		return err
	}
	yEnd := yFlipped + h - 1
	if err := d.sendData([]byte{byte(yEnd & 0xFF), byte(yEnd >> 8), byte(yFlipped & 0xFF), byte(yFlipped >> 8)}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdSetRAMXCounter); err != nil {
		return err
	}
	if err := d.sendData([]byte{byte(x & 0xFF), byte(x >> 8)}); err != nil {
		return err
	}

	if err := d.sendCommand(cmdSetRAMYCounter); err != nil {
		return err
	}
	return d.sendData([]byte{byte(yEnd & 0xFF), byte(yEnd >> 8)})
}

func (d *Driver) sendCommand(cmd byte) error {
	return d.bus.WriteCommand(cmd)
}

func (d *Driver) sendData(data []byte) error {
	return d.bus.WriteData(data)
}

// WaitBusy polls BUSY until it goes low or timeout elapses.
func (d *Driver) WaitBusy(timeout time.Duration) error {
	deadline := d.clock.Now().Add(timeout)
	for {
		busy, err := d.bus.Busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if d.clock.Now().After(deadline) || d.clock.Now().Equal(deadline) {
			return nil
		}
	}
}

// IsBusy reports the controller's current BUSY level.
func (d *Driver) IsBusy() (bool, error) { return d.bus.Busy() }
