/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package strip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginStripFillsWhite(t *testing.T) {
	var b Buffer
	b.BeginStrip(Deg270, 0)
	for _, v := range b.Data() {
		require.Equal(t, byte(0xFF), v)
	}
	x, y, w, h := b.Window()
	require.Equal(t, 0, x)
	require.Equal(t, 0, y)
	require.Equal(t, Width, w)
	require.Equal(t, Rows, h)
}

func TestBeginWindowClampsHeight(t *testing.T) {
	var b Buffer
	// a window 800px wide needs 100 bytes/row; BufSize/100 = 40 max rows
	b.BeginWindow(Deg0, 0, 0, Width, 1000)
	_, _, _, h := b.Window()
	require.Equal(t, MaxRowsForWidth(Width), h)
}

func TestSetPixelPhysicalRoundTrip(t *testing.T) {
	var b Buffer
	b.BeginWindow(Deg0, 0, 0, 64, 8)
	b.SetPixelPhysical(3, 2, true)
	idx := 3/8 + 2*b.rowBytes
	require.Equal(t, byte(0xFF)^(1<<4), b.Data()[idx])
}

func TestToPhysicalDeg270(t *testing.T) {
	var b Buffer
	b.rotation = Deg270
	px, py := b.ToPhysical(0, 0)
	require.Equal(t, 0, px)
	require.Equal(t, Height-1, py)
}

func TestLogicalWindowRoundTripsDeg270(t *testing.T) {
	var b Buffer
	b.BeginStrip(Deg270, 3)
	region := b.LogicalWindow()
	require.Equal(t, Height-120-Rows, region.X)
	require.Equal(t, 0, region.Y)
	require.Equal(t, Rows, region.W)
	require.Equal(t, Width, region.H)
}

func TestFillRectByteAligned(t *testing.T) {
	var b Buffer
	b.BeginWindow(Deg0, 0, 0, 32, 4)
	b.FillRect(0, 0, 8, 1, true)
	require.Equal(t, byte(0x00), b.Data()[0])
	require.Equal(t, byte(0xFF), b.Data()[1])
}

func TestFillRectPartialByteMask(t *testing.T) {
	var b Buffer
	b.BeginWindow(Deg0, 0, 0, 16, 1)
	b.FillRect(2, 0, 6, 1, true)
	// bits 2..5 (0-indexed from MSB) cleared: 11000011
	require.Equal(t, byte(0b11000011), b.Data()[0])
}

func TestBlitGlyphDeg270FastPathMatchesGeneric(t *testing.T) {
	g := Glyph{Bits: []byte{0b10100000, 0b01100000}, Cols: 3, Rows: 2}

	var fast Buffer
	fast.BeginStrip(Deg270, 0)
	fast.BlitGlyph(5, 5, g)

	var generic Buffer
	generic.BeginStrip(Deg270, 0)
	generic.blitGlyphGeneric(5, 5, g)

	require.Equal(t, generic.Data(), fast.Data())
}
