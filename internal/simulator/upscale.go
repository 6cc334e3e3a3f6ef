/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package simulator

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Upscale scales src up by an integer factor with nearest-neighbor
// sampling, so the panel's true 800x480 pixel grid stays legible in a
// desktop window instead of rendering at its native (tiny, on a modern
// display) physical size.
func Upscale(src image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
