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

// Package testdoc creates small PDF documents for use in unit tests.
package testdoc

import (
	"bytes"
	"fmt"
	"slices"

	"seehuhn.de/go/pdfops"
)

// A4 is the media box used for all test pages.
var A4 = pdfops.Array{pdfops.Integer(0), pdfops.Integer(0), pdfops.Integer(595), pdfops.Integer(842)}

// PageText returns the text shown on the given page (1-based) of documents
// created by this package.  The prefix distinguishes documents.
func PageText(prefix string, pageNo int) string {
	return fmt.Sprintf("%s page %d", prefix, pageNo)
}

// New creates a document with numPages pages.  Each page shows the text
// [PageText](prefix, i).  The pages are arranged in a two-level page tree,
// and the media box and font resources are inherited from the root of the
// page tree.
func New(prefix string, numPages int) *pdfops.Document {
	doc := pdfops.NewDocument(pdfops.V1_7)

	font := doc.Add(pdfops.Dict{
		"Type":     pdfops.Name("Font"),
		"Subtype":  pdfops.Name("Type1"),
		"BaseFont": pdfops.Name("Helvetica"),
	})

	rootRef := doc.Alloc()
	var rootKids pdfops.Array
	for start := 0; start < numPages; start += 2 {
		nodeRef := doc.Alloc()
		var kids pdfops.Array
		for i := start; i < min(start+2, numPages); i++ {
			content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", PageText(prefix, i+1))
			contentRef := doc.Add(pdfops.NewStream(nil, []byte(content)))
			pageRef := doc.Add(pdfops.Dict{
				"Type":     pdfops.Name("Page"),
				"Parent":   nodeRef,
				"Contents": contentRef,
			})
			kids = append(kids, pageRef)
		}
		doc.Put(nodeRef, pdfops.Dict{
			"Type":   pdfops.Name("Pages"),
			"Parent": rootRef,
			"Kids":   kids,
			"Count":  pdfops.Integer(len(kids)),
		})
		rootKids = append(rootKids, nodeRef)
	}
	doc.Put(rootRef, pdfops.Dict{
		"Type":     pdfops.Name("Pages"),
		"Kids":     rootKids,
		"Count":    pdfops.Integer(numPages),
		"MediaBox": A4,
		"Resources": pdfops.Dict{
			"Font": pdfops.Dict{"F1": font},
		},
	})

	doc.Trailer["Root"] = doc.Add(pdfops.Dict{
		"Type":  pdfops.Name("Catalog"),
		"Pages": rootRef,
	})
	doc.Trailer["Info"] = doc.Add(pdfops.Dict{
		"Title": pdfops.TextString(prefix),
	})
	return doc
}

// PDF returns the serialized form of New(prefix, numPages).
func PDF(prefix string, numPages int) []byte {
	data, err := pdfops.Serialize(New(prefix, numPages))
	if err != nil {
		panic(err)
	}
	return data
}

// Assemble creates a PDF file with a classic cross-reference table from
// the given object bodies.  The keys of objects are the object numbers,
// the values are the text between "n 0 obj" and "endobj".  The trailer
// is the contents of the trailer dictionary, without the /Size entry and
// without the enclosing "<<" and ">>".
func Assemble(objects map[int]string, trailer string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n%\x80\x80\x80\x80\n")

	var nums []int
	maxNum := 0
	for num := range objects {
		nums = append(nums, num)
		maxNum = max(maxNum, num)
	}
	slices.Sort(nums)

	offsets := make(map[int]int)
	for _, num := range nums {
		offsets[num] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", num, objects[num])
	}

	xrefPos := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", maxNum+1)
	for num := 0; num <= maxNum; num++ {
		if pos, ok := offsets[num]; ok {
			fmt.Fprintf(buf, "%010d 00000 n\r\n", pos)
		} else {
			buf.WriteString("0000000000 65535 f\r\n")
		}
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n",
		maxNum+1, trailer, xrefPos)
	return buf.Bytes()
}
