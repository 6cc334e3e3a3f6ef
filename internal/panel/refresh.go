/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import (
	"time"

	"pulpcore/internal/strip"
)

// writeRegionStrips streams draw's output into one RAM plane (ramCmd) a
// strip.Buffer window at a time, applying the edge masks to the first and
// last byte of each row when the region isn't byte-aligned.
func (d *Driver) writeRegionStrips(win *strip.Buffer, px, py, pw, ph int, ramCmd byte, draw Draw, leftMask, rightMask byte) error {
	maxRows := strip.MaxRowsForWidth(pw)
	rowBytes := pw / 8
	needsMask := leftMask != 0 || rightMask != 0

	if err := d.setPartialRAMArea(px, py, pw, ph); err != nil {
		return err
	}
	if err := d.sendCommand(ramCmd); err != nil {
		return err
	}

	for y := py; y < py+ph; {
		rows := maxRows
		if rem := py + ph - y; rows > rem {
			rows = rem
		}
		win.BeginWindow(strip.Deg270, px, y, pw, rows)
		draw(win)

		data := win.Data()
		if needsMask && rowBytes > 0 {
			for row := 0; row+rowBytes <= len(data); row += rowBytes {
				data[row] |= leftMask
				data[row+rowBytes-1] |= rightMask
			}
		}
		if err := d.sendData(data); err != nil {
			return err
		}
		y += rows
	}
	return nil
}

// writeRegionStripsDual writes the same strip content to both RAM planes,
// drawing each window once and replaying the bytes to RED then BW — this
// halves draw calls relative to drawing twice (the SPI writes are the same).
func (d *Driver) writeRegionStripsDual(win *strip.Buffer, px, py, pw, ph int, draw Draw, leftMask, rightMask byte) error {
	maxRows := strip.MaxRowsForWidth(pw)
	rowBytes := pw / 8
	needsMask := leftMask != 0 || rightMask != 0

	for y := py; y < py+ph; {
		rows := maxRows
		if rem := py + ph - y; rows > rem {
			rows = rem
		}
		win.BeginWindow(strip.Deg270, px, y, pw, rows)
		draw(win)

		data := win.Data()
		if needsMask && rowBytes > 0 {
			for row := 0; row+rowBytes <= len(data); row += rowBytes {
				data[row] |= leftMask
				data[row+rowBytes-1] |= rightMask
			}
		}

		replay := make([]byte, len(data))
		copy(replay, data)

		for _, ramCmd := range [2]byte{cmdWriteRAMRed, cmdWriteRAMBW} {
			if err := d.setPartialRAMArea(px, y, pw, rows); err != nil {
				return err
			}
			if err := d.sendCommand(ramCmd); err != nil {
				return err
			}
			if err := d.sendData(replay); err != nil {
				return err
			}
		}
		y += rows
	}
	return nil
}

// clipToRAMWindow transforms a logical region to the panel's physical RAM
// addressing, clips it to the panel bounds, and aligns it to byte
// boundaries on x and w, returning the left/right edge masks needed to
// avoid disturbing pixels outside the requested logical region. ok is
// false if the region is degenerate after clipping.
func clipToRAMWindow(x, y, w, h int) (px, py, pw, ph int, leftMask, rightMask byte, ok bool) {
	tx, ty, tw, th := transformRegion(x, y, w, h)

	px = tx &^ 7
	if px > Width {
		px = Width
	}
	py = ty
	if py > Height {
		py = Height
	}
	pw = (tw + (tx & 7) + 7) &^ 7
	if rem := Width - px; pw > rem {
		pw = rem
	}
	ph = th
	if rem := Height - py; ph > rem {
		ph = rem
	}

	if pw <= 0 || ph <= 0 {
		return 0, 0, 0, 0, 0, 0, false
	}

	lp := tx - px
	rp := (px + pw) - (tx + tw)
	if lp > 0 {
		leftMask = ^(byte(1)<<(8-uint(lp)) - 1)
	}
	if rp > 0 {
		rightMask = byte(1)<<uint(rp) - 1
	}
	return px, py, pw, ph, leftMask, rightMask, true
}

// writeRegionStripsInvertedRed writes draw's output to BW and its bitwise
// complement to RED, strip by strip, so RED and BW are forced to disagree
// on every pixel of the region.
func (d *Driver) writeRegionStripsInvertedRed(win *strip.Buffer, px, py, pw, ph int, draw Draw, leftMask, rightMask byte) error {
	maxRows := strip.MaxRowsForWidth(pw)
	rowBytes := pw / 8
	needsMask := leftMask != 0 || rightMask != 0

	for y := py; y < py+ph; {
		rows := maxRows
		if rem := py + ph - y; rows > rem {
			rows = rem
		}
		win.BeginWindow(strip.Deg270, px, y, pw, rows)
		draw(win)

		data := win.Data()
		if needsMask && rowBytes > 0 {
			for row := 0; row+rowBytes <= len(data); row += rowBytes {
				data[row] |= leftMask
				data[row+rowBytes-1] |= rightMask
			}
		}

		bw := make([]byte, len(data))
		copy(bw, data)
		red := make([]byte, len(data))
		for i, b := range data {
			red[i] = ^b
		}

		if err := d.setPartialRAMArea(px, y, pw, rows); err != nil {
			return err
		}
		if err := d.sendCommand(cmdWriteRAMBW); err != nil {
			return err
		}
		if err := d.sendData(bw); err != nil {
			return err
		}

		if err := d.setPartialRAMArea(px, y, pw, rows); err != nil {
			return err
		}
		if err := d.sendCommand(cmdWriteRAMRed); err != nil {
			return err
		}
		if err := d.sendData(red); err != nil {
			return err
		}

		y += rows
	}
	return nil
}

// Phase1BW writes new content into BW RAM for the logical region (x, y, w,
// h), clipped and byte-aligned to the panel's RAM addressing. It returns
// nil, nil if the initial full refresh hasn't happened yet, or if the
// region is degenerate after clipping.
func (d *Driver) Phase1BW(win *strip.Buffer, x, y, w, h int, draw Draw) (*RenderState, error) {
	if d.initialRefresh {
		return nil, nil
	}
	if !d.initDone {
		if err := d.initDisplay(); err != nil {
			return nil, err
		}
	}

	px, py, pw, ph, leftMask, rightMask, ok := clipToRAMWindow(x, y, w, h)
	if !ok {
		return nil, nil
	}

	if err := d.writeRegionStrips(win, px, py, pw, ph, cmdWriteRAMBW, draw, leftMask, rightMask); err != nil {
		return nil, err
	}

	return &RenderState{PX: px, PY: py, PW: pw, PH: ph, LeftMask: leftMask, RightMask: rightMask}, nil
}

// Phase1BWRedStale is Phase1BW's variant for a region that overlaps a
// "red stale" area left by a skipped phase-3 sync: it writes the new
// content to BW and its bitwise inverse to RED in the same pass, so every
// pixel in the region is guaranteed to differ between the two planes and
// gets driven by the differential update regardless of what RED last held.
func (d *Driver) Phase1BWRedStale(win *strip.Buffer, x, y, w, h int, draw Draw) (*RenderState, error) {
	if d.initialRefresh {
		return nil, nil
	}
	if !d.initDone {
		if err := d.initDisplay(); err != nil {
			return nil, err
		}
	}

	px, py, pw, ph, leftMask, rightMask, ok := clipToRAMWindow(x, y, w, h)
	if !ok {
		return nil, nil
	}

	if err := d.writeRegionStripsInvertedRed(win, px, py, pw, ph, draw, leftMask, rightMask); err != nil {
		return nil, err
	}

	return &RenderState{PX: px, PY: py, PW: pw, PH: ph, LeftMask: leftMask, RightMask: rightMask}, nil
}

// PartialStartDU kicks the controller's DU (differential update) waveform
// for rs's region without blocking; callers poll IsBusy and call
// Phase3Sync once it clears.
func (d *Driver) PartialStartDU(rs *RenderState) error {
	if err := d.setPartialRAMArea(rs.PX, rs.PY, rs.PW, rs.PH); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDisplayUpdateCtrl1); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x00, 0x00}); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDisplayUpdateCtrl2); err != nil {
		return err
	}
	if err := d.sendData([]byte{0xFC}); err != nil {
		return err
	}
	if err := d.sendCommand(cmdMasterActivation); err != nil {
		return err
	}
	d.powerIsOn = true
	return nil
}

// Phase3Sync re-draws rs's region into both RAM planes after the DU
// waveform completes (IsBusy has gone false), so BW and RED agree again.
func (d *Driver) Phase3Sync(win *strip.Buffer, rs *RenderState, draw Draw) error {
	return d.writeRegionStripsDual(win, rs.PX, rs.PY, rs.PW, rs.PH, draw, rs.LeftMask, rs.RightMask)
}

// WriteFullFrame writes draw's output to both RAM planes across all
// strip.Count bands, without kicking the GC waveform.
func (d *Driver) WriteFullFrame(win *strip.Buffer, draw Draw) error {
	if !d.initDone {
		if err := d.initDisplay(); err != nil {
			return err
		}
	}
	d.clock.Sleep(time.Millisecond)

	for _, ramCmd := range [2]byte{cmdWriteRAMRed, cmdWriteRAMBW} {
		if err := d.setPartialRAMArea(0, 0, Width, Height); err != nil {
			return err
		}
		if err := d.sendCommand(ramCmd); err != nil {
			return err
		}
		d.clock.Sleep(time.Millisecond)

		for i := 0; i < strip.Count; i++ {
			win.BeginStrip(strip.Deg270, i)
			draw(win)
			if err := d.sendData(win.Data()); err != nil {
				return err
			}
		}
	}
	return nil
}

// StartFullUpdate kicks the GC (full) waveform; it does not block. Callers
// poll IsBusy (it runs for roughly 1.6s) then call FinishFullUpdate.
func (d *Driver) StartFullUpdate() error {
	if err := d.sendCommand(cmdDisplayUpdateCtrl1); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x40, 0x00}); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDisplayUpdateCtrl2); err != nil {
		return err
	}
	if err := d.sendData([]byte{0xF7}); err != nil {
		return err
	}
	return d.sendCommand(cmdMasterActivation)
}

// FinishFullUpdate marks the GC waveform complete and clears the
// initial-refresh gate, allowing partial refreshes from here on.
func (d *Driver) FinishFullUpdate() {
	d.powerIsOn = false
	d.initialRefresh = false
}

// PowerOff switches the analog/gate drive off after a partial refresh,
// without touching the controller's deep-sleep state. E-paper retains its
// image without power; leaving the analog stage on between refreshes draws
// several milliamps for nothing.
func (d *Driver) PowerOff() error {
	if !d.powerIsOn {
		return nil
	}
	if err := d.sendCommand(cmdDisplayUpdateCtrl2); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x83}); err != nil {
		return err
	}
	if err := d.sendCommand(cmdMasterActivation); err != nil {
		return err
	}
	if err := d.WaitBusy(powerOffTimeout); err != nil {
		return err
	}
	d.powerIsOn = false
	return nil
}

// EnterDeepSleep powers the panel off (if on) and puts the controller into
// mode-1 deep sleep: RAM contents retained, a few microamps drawn, and a
// hardware reset required to wake.
func (d *Driver) EnterDeepSleep() error {
	if err := d.PowerOff(); err != nil {
		return err
	}

	if err := d.sendCommand(cmdDeepSleep); err != nil {
		return err
	}
	if err := d.sendData([]byte{0x01}); err != nil {
		return err
	}
	d.initDone = false
	return nil
}
