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

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/graphics"
	"seehuhn.de/go/pdfops/pagetree"
)

// A FoldingLine is a straight line in the default user space of a page.
type FoldingLine struct {
	Start, End vec.Vec2
}

// FoldingGray is the stroke color used for folding lines.
const FoldingGray = 127.0 / 255

// FoldingLines strokes the given lines on every page of the document.  The
// lines are drawn in gray, as a single path.  The number of pages changed
// is returned.  If lines is empty, the document is not changed.
func FoldingLines(doc *pdfops.Document, lines []FoldingLine) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		return 0, err
	}
	for i, page := range pages {
		err := DrawFoldingLines(doc, page, lines)
		if err != nil {
			return i, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return len(pages), nil
}

// DrawFoldingLines strokes the given lines on a single page.
func DrawFoldingLines(doc *pdfops.Document, page *pagetree.Page, lines []FoldingLine) error {
	if len(lines) == 0 {
		return nil
	}
	return Overlay(doc, page, func(w *graphics.Writer) {
		w.PushGraphicsState()
		w.SetStrokeRGB(FoldingGray, FoldingGray, FoldingGray)
		for _, l := range lines {
			w.MoveTo(l.Start.X, l.Start.Y)
			w.LineTo(l.End.X, l.End.Y)
		}
		w.Stroke()
		w.PopGraphicsState()
	})
}
