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

// Package stamp draws on top of existing PDF pages.
//
// All functions in this package append a new content stream to the page.
// The existing content is enclosed in a q/Q pair first, so that changes
// to the graphics state made by the original content do not affect the
// new content.  Existing content streams are not modified.
package stamp

import (
	"bytes"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/graphics"
	"seehuhn.de/go/pdfops/pagetree"
)

// Overlay draws on top of the existing content of a page.  The function
// draw is called with a content stream writer for the new content.  The
// page dictionary in doc is replaced by a copy with the inherited
// attributes materialized, and page is updated to match.
func Overlay(doc *pdfops.Document, page *pagetree.Page, draw func(w *graphics.Writer)) error {
	res := page.Resources.Clone()
	buf := &bytes.Buffer{}
	w := graphics.NewWriter(buf, doc, res)
	draw(w)
	err := w.Close()
	if err != nil {
		return err
	}

	dict := page.Materialize()
	contents, err := pdfops.Resolve(doc, dict["Contents"])
	if err != nil {
		return err
	}
	var old pdfops.Array
	switch contents := contents.(type) {
	case nil:
		// empty page
	case pdfops.Array:
		old = contents
	default:
		old = pdfops.Array{dict["Contents"]}
	}

	var newContents pdfops.Array
	if len(old) > 0 {
		newContents = append(newContents, doc.Add(pdfops.NewStream(nil, []byte("q\n"))))
		newContents = append(newContents, old...)
		buf = bytes.NewBuffer(append([]byte("Q\n"), buf.Bytes()...))
	}
	newContents = append(newContents, doc.Add(pdfops.NewStream(nil, buf.Bytes())))

	dict["Contents"] = newContents
	dict["Resources"] = w.Resources
	doc.Put(page.Ref, dict)

	page.Dict = dict
	page.Resources = w.Resources
	return nil
}
