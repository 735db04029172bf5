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

package graphics

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/internal/float"
)

// PushGraphicsState saves the current graphics state.
//
// This implements the PDF graphics operator "q".
func (w *Writer) PushGraphicsState() {
	if !w.isValid("PushGraphicsState", objPage) {
		return
	}
	w.nesting = append(w.nesting, pairTypeQ)
	_, w.Err = fmt.Fprintln(w.Content, "q")
}

// PopGraphicsState restores the previous graphics state.
//
// This implements the PDF graphics operator "Q".
func (w *Writer) PopGraphicsState() {
	if !w.isValid("PopGraphicsState", objPage) {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairTypeQ {
		w.Err = errors.New("PopGraphicsState: no matching PushGraphicsState")
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	_, w.Err = fmt.Fprintln(w.Content, "Q")
}

// Transform applies a transformation matrix to the coordinate system.
//
// This implements the PDF graphics operator "cm".
func (w *Writer) Transform(M matrix.Matrix) {
	if !w.isValid("Transform", objPage) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content,
		float.Format(M[0], 5), float.Format(M[1], 5),
		float.Format(M[2], 5), float.Format(M[3], 5),
		coord(M[4]), coord(M[5]), "cm")
}

// SetLineWidth sets the line width.
//
// This implements the PDF graphics operator "w".
func (w *Writer) SetLineWidth(width float64) {
	if !w.isValid("SetLineWidth", objPage|objText) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, coord(width), "w")
}

// SetExtGState sets the graphics state parameters from the given
// ExtGState dictionary.
//
// This implements the PDF graphics operator "gs".
func (w *Writer) SetExtGState(gs pdfops.Object) {
	if !w.isValid("SetExtGState", objPage|objText) {
		return
	}
	name := w.ResourceName(CatExtGState, gs)
	w.writeName(name, "gs")
}

// SetStrokeRGB sets the stroke color in the DeviceRGB color space.
//
// This implements the PDF graphics operator "RG".
func (w *Writer) SetStrokeRGB(r, g, b float64) {
	if !w.isValid("SetStrokeRGB", objPage|objText) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, float.Format(r, 3), float.Format(g, 3), float.Format(b, 3), "RG")
}

// SetFillGray sets the fill color in the DeviceGray color space.
//
// This implements the PDF graphics operator "g".
func (w *Writer) SetFillGray(gray float64) {
	if !w.isValid("SetFillGray", objPage|objText) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, float.Format(gray, 3), "g")
}

// MoveTo starts a new path at the given coordinates.
//
// This implements the PDF graphics operator "m".
func (w *Writer) MoveTo(x, y float64) {
	if !w.isValid("MoveTo", objPage|objPath) {
		return
	}
	w.currentObject = objPath
	_, w.Err = fmt.Fprintln(w.Content, coord(x), coord(y), "m")
}

// LineTo appends a straight line segment to the current path.
//
// This implements the PDF graphics operator "l".
func (w *Writer) LineTo(x, y float64) {
	if !w.isValid("LineTo", objPath) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, coord(x), coord(y), "l")
}

// Stroke strokes the current path.
//
// This implements the PDF graphics operator "S".
func (w *Writer) Stroke() {
	if !w.isValid("Stroke", objPath) {
		return
	}
	w.currentObject = objPage
	_, w.Err = fmt.Fprintln(w.Content, "S")
}

// DrawXObject draws the given XObject, usually an image, in the unit
// square of the current coordinate system.
//
// This implements the PDF graphics operator "Do".
func (w *Writer) DrawXObject(xObj pdfops.Object) {
	if !w.isValid("DrawXObject", objPage) {
		return
	}
	name := w.ResourceName(CatXObject, xObj)
	w.writeName(name, "Do")
}

// TextStart starts a new text object.
//
// This implements the PDF graphics operator "BT".
func (w *Writer) TextStart() {
	if !w.isValid("TextStart", objPage) {
		return
	}
	w.currentObject = objText
	w.nesting = append(w.nesting, pairTypeBT)
	_, w.Err = fmt.Fprintln(w.Content, "BT")
}

// TextEnd ends the current text object.
//
// This implements the PDF graphics operator "ET".
func (w *Writer) TextEnd() {
	if !w.isValid("TextEnd", objText) {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairTypeBT {
		w.Err = errors.New("TextEnd: no matching TextStart")
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	w.currentObject = objPage
	_, w.Err = fmt.Fprintln(w.Content, "ET")
}

// TextSetFont sets the font and font size.
//
// This implements the PDF graphics operator "Tf".
func (w *Writer) TextSetFont(font pdfops.Object, size float64) {
	if !w.isValid("TextSetFont", objPage|objText) {
		return
	}
	name := w.ResourceName(CatFont, font)
	if w.Err != nil {
		return
	}
	w.Err = name.PDF(w.Content)
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "", coord(size), "Tf")
}

// TextFirstLine moves to the start of the next line, offset from the start
// of the current line by (dx, dy).
//
// This implements the PDF graphics operator "Td".
func (w *Writer) TextFirstLine(dx, dy float64) {
	if !w.isValid("TextFirstLine", objText) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, coord(dx), coord(dy), "Td")
}

// TextSetMatrix replaces the text matrix and the text line matrix.
//
// This implements the PDF graphics operator "Tm".
func (w *Writer) TextSetMatrix(M matrix.Matrix) {
	if !w.isValid("TextSetMatrix", objText) {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content,
		float.Format(M[0], 5), float.Format(M[1], 5),
		float.Format(M[2], 5), float.Format(M[3], 5),
		coord(M[4]), coord(M[5]), "Tm")
}

// TextShow shows the string s, which must be encoded for the current font.
//
// This implements the PDF graphics operator "Tj".
func (w *Writer) TextShow(s pdfops.String) {
	if !w.isValid("TextShow", objText) {
		return
	}
	w.Err = s.PDF(w.Content)
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, " Tj")
}

func (w *Writer) writeName(name pdfops.Name, op string) {
	if w.Err != nil {
		return
	}
	w.Err = name.PDF(w.Content)
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, "", op)
}
