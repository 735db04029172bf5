// seehuhn.de/go/pdfops - merge, stamp and inspect PDF documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package stamp

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/graphics"
	"seehuhn.de/go/pdfops/pagetree"
)

// WatermarkOptions controls the appearance of a watermark.  Zero values
// select the defaults.
type WatermarkOptions struct {
	// Text is the watermark text.  The default is "PISZKOZAT".
	Text string

	// FontSize is the font size in PDF units.  The default is 84.
	FontSize float64

	// Angle is the counter-clockwise rotation of the text in degrees.
	// The default is 45.  Use 360 for horizontal text.
	Angle float64

	// Opacity is the fill opacity, between 0 and 1.  The default is 0.2.
	Opacity float64
}

// The default watermark settings.
const (
	DefaultWatermarkText     = "PISZKOZAT"
	DefaultWatermarkFontSize = 84
	DefaultWatermarkAngle    = 45
	DefaultWatermarkOpacity  = 0.2
)

func (opt *WatermarkOptions) withDefaults() WatermarkOptions {
	var res WatermarkOptions
	if opt != nil {
		res = *opt
	}
	if res.Text == "" {
		res.Text = DefaultWatermarkText
	}
	if res.FontSize <= 0 {
		res.FontSize = DefaultWatermarkFontSize
	}
	if res.Angle == 0 {
		res.Angle = DefaultWatermarkAngle
	}
	if res.Opacity <= 0 || res.Opacity > 1 {
		res.Opacity = DefaultWatermarkOpacity
	}
	return res
}

// Watermark draws a translucent, rotated text onto every page of the
// document.  The text is set in the standard Courier font and is centered
// on the center of the media box.  The page rotation is ignored.
// The number of pages watermarked is returned.
func Watermark(doc *pdfops.Document, opt *WatermarkOptions) (int, error) {
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		return 0, err
	}
	wm := NewWatermark(doc, opt)
	for i, page := range pages {
		err := wm.Apply(page)
		if err != nil {
			return i, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return len(pages), nil
}

// A Watermarker draws the same watermark onto several pages.  The font and
// graphics state dictionaries are shared between all pages.
type Watermarker struct {
	doc  *pdfops.Document
	opt  WatermarkOptions
	font pdfops.Reference
	gs   pdfops.Reference
	text pdfops.String
}

// NewWatermark prepares a watermark for the pages of doc.
func NewWatermark(doc *pdfops.Document, opt *WatermarkOptions) *Watermarker {
	o := opt.withDefaults()

	// constant alpha requires PDF 1.4
	doc.RequireVersion(pdfops.V1_4)

	return &Watermarker{
		doc:  doc,
		opt:  o,
		font: doc.Add(graphics.StandardFont("Courier")),
		gs: doc.Add(pdfops.Dict{
			"Type": pdfops.Name("ExtGState"),
			"ca":   pdfops.Real(o.Opacity),
		}),
		text: graphics.WinAnsi(o.Text),
	}
}

// Apply draws the watermark onto a single page.
func (wm *Watermarker) Apply(page *pagetree.Page) error {
	box := page.MediaBox
	x := (box.LLx + box.URx) / 2
	y := (box.LLy + box.URy) / 2
	width := float64(len(wm.text)) * graphics.MonospaceWidth / 1000 * wm.opt.FontSize

	return Overlay(wm.doc, page, func(w *graphics.Writer) {
		w.PushGraphicsState()
		w.SetExtGState(wm.gs)
		w.Transform(matrix.RotateDeg(wm.opt.Angle).Translate(x, y))
		w.TextStart()
		w.TextSetFont(wm.font, wm.opt.FontSize)
		w.TextFirstLine(-width/2, 0)
		w.TextShow(wm.text)
		w.TextEnd()
		w.PopGraphicsState()
	})
}
