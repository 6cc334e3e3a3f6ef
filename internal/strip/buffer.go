/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package strip implements the panel's strip buffer: a small, fixed-size
// 1-bit-per-pixel window that the renderer fills one horizontal band at a
// time rather than holding a full 800x480 framebuffer, and the
// rotation-aware coordinate transforms between a document's logical
// top-left-origin layout and the panel's physical scan order.
package strip

// Panel geometry. Matches the SSD1677 panel this spec targets.
const (
	Width  = 800
	Height = 480

	PhysBytesPerRow = Width / 8 // 100
	Rows            = 40
	BufSize         = PhysBytesPerRow * Rows // 4000
	Count           = Height / Rows          // 12
)

// Rotation describes how logical (document) coordinates map onto the
// panel's physical scan order. Deg270 is the device default: the panel is
// mounted so its native landscape scan becomes the reader's portrait view.
type Rotation int

const (
	Deg0 Rotation = iota
	Deg90
	Deg180
	Deg270
)

// Region is a logical rectangle: x, y, width, height in document space.
type Region struct {
	X, Y, W, H int
}

// Buffer is a strip of panel-physical pixel data, 0xFF-filled (white) on
// every reset.
type Buffer struct {
	buf      [BufSize]byte
	rotation Rotation
	winX, winY, winW, winH int
	rowBytes int
}

// BeginStrip resets buf to a full-width physical band: strip index idx of
// Count (0-based), at the given rotation.
func (b *Buffer) BeginStrip(rotation Rotation, idx int) {
	b.rotation = rotation
	b.winX, b.winY = 0, idx*Rows
	b.winW, b.winH = PhysBytesPerRow*8, Rows
	b.rowBytes = PhysBytesPerRow
	b.fill(0xFF)
}

// MaxRowsForWidth returns how many physical rows of width w (in pixels)
// fit in BufSize bytes.
func MaxRowsForWidth(w int) int {
	rb := w / 8
	if rb == 0 {
		return 0
	}
	return BufSize / rb
}

// BeginWindow resets buf to an arbitrary physical-space window, clamping
// its height so the window always fits BufSize bytes.
func (b *Buffer) BeginWindow(rotation Rotation, x, y, w, h int) {
	b.rotation = rotation
	b.winX, b.winY = x, y
	b.rowBytes = w / 8
	maxRows := MaxRowsForWidth(w)
	if h > maxRows {
		h = maxRows
	}
	b.winW, b.winH = w, h
	b.fill(0xFF)
}

func (b *Buffer) fill(v byte) {
	total := b.rowBytes * b.winH
	if total > BufSize {
		total = BufSize
	}
	for i := 0; i < total; i++ {
		b.buf[i] = v
	}
}

// Data returns the window's backing bytes.
func (b *Buffer) Data() []byte {
	total := b.rowBytes * b.winH
	if total > BufSize {
		total = BufSize
	}
	return b.buf[:total]
}

// Window returns the current physical window as (x, y, w, h).
func (b *Buffer) Window() (int, int, int, int) { return b.winX, b.winY, b.winW, b.winH }

// LogicalWindow inverse-transforms the current physical window back to
// document space.
func (b *Buffer) LogicalWindow() Region {
	switch b.rotation {
	case Deg90:
		return Region{X: b.winY, Y: Width - b.winX - b.winW, W: b.winH, H: b.winW}
	case Deg180:
		return Region{X: Width - b.winX - b.winW, Y: Height - b.winY - b.winH, W: b.winW, H: b.winH}
	case Deg270:
		return Region{X: Height - b.winY - b.winH, Y: b.winX, W: b.winH, H: b.winW}
	default:
		return Region{X: b.winX, Y: b.winY, W: b.winW, H: b.winH}
	}
}

// ToPhysical maps one logical (document) pixel to a physical (px, py)
// coordinate under the buffer's current rotation.
func (b *Buffer) ToPhysical(lx, ly int) (int, int) {
	switch b.rotation {
	case Deg90:
		return Width - 1 - ly, lx
	case Deg180:
		return Width - 1 - lx, Height - 1 - ly
	case Deg270:
		return ly, Height - 1 - lx
	default:
		return lx, ly
	}
}

// SetPixelPhysical sets or clears one physical pixel within the current
// window; out-of-window coordinates are silently ignored (callers clip
// against LogicalWindow before drawing).
func (b *Buffer) SetPixelPhysical(px, py int, black bool) {
	if px < b.winX || px >= b.winX+b.winW || py < b.winY || py >= b.winY+b.winH {
		return
	}
	localX := px - b.winX
	localY := py - b.winY
	idx := localX/8 + localY*b.rowBytes
	if idx < 0 || idx >= len(b.buf) {
		return
	}
	bit := byte(7 - localX%8)
	if black {
		b.buf[idx] &^= 1 << bit
	} else {
		b.buf[idx] |= 1 << bit
	}
}
