/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package proof renders a cached chapter's styled plaintext (style markers
// interpreted, not stripped) to a PDF sized to the panel's pixel
// dimensions, so stripper/CSS output can be inspected visually without
// real hardware. It deliberately does not attempt to reproduce the
// device's exact glyph rasterization or pagination — just bold/italic/
// heading/quote/scene-break markup and image-reference placeholders, laid
// out with gofpdf's built-in fonts.
package proof

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"pulpcore/internal/htmlstrip"
	"pulpcore/internal/strip"
)

// Options controls rendering.
type Options struct {
	Title      string
	BaseFontPt float64 // body text size in points; headings/quotes scale from this
}

// DefaultOptions returns the proof renderer's factory settings.
func DefaultOptions() Options {
	return Options{Title: "Chapter proof", BaseFontPt: 11}
}

// RenderChapter renders styled (style-marker-encoded) chapter text to a
// single-column PDF at outPath, one page per panel-height's worth of text,
// sized to the panel's logical portrait dimensions (strip.Height x
// strip.Width points, 1 pixel = 1 point).
func RenderChapter(text []byte, opt Options, outPath string) error {
	pageW := float64(strip.Height) // 480pt: logical portrait width
	pageH := float64(strip.Width)  // 800pt: logical portrait height
	const margin = 16.0

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(opt.Title, false)
	pdf.SetAuthor("pulpcore", false)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	r := newRenderer(pdf, opt, pageW-2*margin)
	r.run(text)

	return pdf.OutputFileAndClose(outPath)
}

type style struct {
	bold, italic, heading, quote bool
}

func (s style) fontStyle() string {
	out := ""
	if s.bold {
		out += "B"
	}
	if s.italic {
		out += "I"
	}
	return out
}

func (s style) sizePt(base float64) float64 {
	switch {
	case s.heading:
		return base * 1.5
	default:
		return base
	}
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	opt    Options
	width  float64
	st     style
	imgSeq int
}

func newRenderer(pdf *gofpdf.Fpdf, opt Options, width float64) *renderer {
	return &renderer{pdf: pdf, opt: opt, width: width}
}

func (r *renderer) applyFont() {
	r.pdf.SetFont("Helvetica", r.st.fontStyle(), r.st.sizePt(r.opt.BaseFontPt))
}

// run walks the style-marker-encoded byte stream, applying font changes
// and emitting text, scene breaks, and image placeholders as it goes.
func (r *renderer) run(text []byte) {
	r.applyFont()
	i := 0
	var runStart int
	flush := func(end int) {
		if end > runStart {
			r.writeRun(string(text[runStart:end]))
		}
	}
	for i < len(text) {
		if text[i] != htmlstrip.Marker || i+1 >= len(text) {
			i++
			continue
		}
		flush(i)
		tag := text[i+1]
		switch tag {
		case htmlstrip.BoldOn:
			r.st.bold = true
			r.applyFont()
			i += 2
		case htmlstrip.BoldOff:
			r.st.bold = false
			r.applyFont()
			i += 2
		case htmlstrip.ItalicOn:
			r.st.italic = true
			r.applyFont()
			i += 2
		case htmlstrip.ItalicOff:
			r.st.italic = false
			r.applyFont()
			i += 2
		case htmlstrip.HeadingOn:
			r.st.heading = true
			r.applyFont()
			i += 2
		case htmlstrip.HeadingOff:
			r.st.heading = false
			r.applyFont()
			i += 2
		case htmlstrip.QuoteOn:
			r.st.quote = true
			i += 2
		case htmlstrip.QuoteOff:
			r.st.quote = false
			i += 2
		case htmlstrip.Break:
			r.pdf.Ln(r.opt.BaseFontPt)
			r.drawSceneBreak()
			i += 2
		case htmlstrip.ImgRef:
			if i+2 >= len(text) {
				i = len(text)
				break
			}
			plen := int(text[i+2])
			start := i + 3
			end := start + plen
			if end > len(text) {
				end = len(text)
			}
			r.drawImagePlaceholder(string(text[start:end]))
			i = end
		default:
			i += 2
		}
		runStart = i
	}
	flush(len(text))
}

func (r *renderer) writeRun(s string) {
	if s == "" {
		return
	}
	indent := 0.0
	if r.st.quote {
		indent = 12
	}
	r.pdf.SetX(r.pdf.GetX() + indent)
	r.pdf.MultiCell(r.width-indent, r.opt.BaseFontPt*1.3, s, "", "L", false)
}

func (r *renderer) drawSceneBreak() {
	r.pdf.CellFormat(r.width, r.opt.BaseFontPt, "* * *", "", 1, "C", false, 0, "")
}

func (r *renderer) drawImagePlaceholder(src string) {
	r.imgSeq++
	label := fmt.Sprintf("[image %d: %s]", r.imgSeq, src)
	r.pdf.SetFont("Helvetica", "I", r.opt.BaseFontPt)
	r.pdf.Rect(r.pdf.GetX(), r.pdf.GetY(), r.width, r.opt.BaseFontPt*3, "D")
	r.pdf.CellFormat(r.width, r.opt.BaseFontPt*3, label, "", 1, "CM", false, 0, "")
	r.applyFont()
}
