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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"

	"pulpcore/internal/strip"
)

// UpscaleFactor is how many desktop pixels each panel pixel occupies.
const UpscaleFactor = 2

// Simulator is a desktop window standing in for the e-paper panel plus
// its physical buttons. It has no BUSY line or waveform timing of its
// own — CaptureFullFrame renders a complete frame synchronously, the way
// a host preview reasonably would, rather than modeling the panel's
// analog refresh latency.
type Simulator struct {
	app  fyne.App
	win  fyne.Window
	img  *canvas.Image
	kbd  *KeyboardHardware
}

// New builds the simulator window, blank until the first ShowFrame call.
func New(title string) *Simulator {
	a := app.New()
	w := a.NewWindow(title)

	blank := image.NewRGBA(image.Rect(0, 0, strip.Width*UpscaleFactor, strip.Height*UpscaleFactor))
	img := canvas.NewImageFromImage(blank)
	img.FillMode = canvas.ImageFillOriginal

	s := &Simulator{app: a, win: w, img: img, kbd: NewKeyboardHardware()}

	w.SetContent(container.NewWithoutLayout(img))
	w.Resize(fyne.NewSize(float32(strip.Width*UpscaleFactor), float32(strip.Height*UpscaleFactor)))

	if dc, ok := w.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(e *fyne.KeyEvent) { s.kbd.HandleKey(e.Name, true) })
		dc.SetOnKeyUp(func(e *fyne.KeyEvent) { s.kbd.HandleKey(e.Name, false) })
	}

	return s
}

// Keyboard returns the input.Hardware implementation driven by this
// window's key events.
func (s *Simulator) Keyboard() *KeyboardHardware { return s.kbd }

// ShowFrame upscales f and paints it into the window.
func (s *Simulator) ShowFrame(f *FullFrame) {
	up := Upscale(f.ToImage(), UpscaleFactor)
	s.img.Image = up
	s.img.Resize(fyne.NewSize(float32(up.Bounds().Dx()), float32(up.Bounds().Dy())))
	canvas.Refresh(s.img)
}

// Run blocks, running the Fyne event loop until the window is closed.
func (s *Simulator) Run() { s.win.ShowAndRun() }

// Close requests the window close, unblocking Run.
func (s *Simulator) Close() { s.win.Close() }
