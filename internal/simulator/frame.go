/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package simulator hosts a virtual panel and virtual input for
// pulpcore's cooperative kernel, so the render pipeline and input
// debounce/long-press/repeat state machine can be exercised and demoed on
// a workstation without target hardware.
package simulator

import (
	"image"
	"image/color"

	"pulpcore/internal/panel"
	"pulpcore/internal/strip"
)

// FullFrame mirrors one complete panel-physical BW plane: the same
// 800x480, MSB-first, stride-100-bytes-per-row layout internal/panel
// writes to RAM, captured on the host instead of sent over SPI.
type FullFrame struct {
	bw [strip.PhysBytesPerRow * strip.Height]byte
}

// CaptureFullFrame runs draw across all strip.Count physical strips at
// Deg270 (the device default rotation) exactly the way
// panel.Driver.WriteFullFrame does, but copies each strip's bytes into an
// in-memory FullFrame instead of writing them to a SPI bus.
func CaptureFullFrame(draw panel.Draw) *FullFrame {
	var f FullFrame
	var win strip.Buffer
	for i := 0; i < strip.Count; i++ {
		win.BeginStrip(strip.Deg270, i)
		draw(&win)
		copy(f.bw[i*strip.PhysBytesPerRow*strip.Rows:], win.Data())
	}
	return &f
}

// Ink reports whether the physical pixel at (px, py) is inked (black).
// Matches strip.Buffer's RAM convention: a cleared bit is ink, a set bit
// is paper — the inverse of the spec's in-memory decoded-image convention,
// since this is the panel's own RAM layout, not a glyph bitmap.
func (f *FullFrame) Ink(px, py int) bool {
	if px < 0 || px >= strip.Width || py < 0 || py >= strip.Height {
		return false
	}
	idx := py*strip.PhysBytesPerRow + px/8
	bit := byte(7 - px%8)
	return f.bw[idx]&(1<<bit) == 0
}

// ToImage renders the frame as a grayscale image at the panel's native
// physical resolution (800x480), one source pixel per panel pixel.
func (f *FullFrame) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, strip.Width, strip.Height))
	for y := 0; y < strip.Height; y++ {
		for x := 0; x < strip.Width; x++ {
			v := uint8(255)
			if f.Ink(x, y) {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}
