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
	"golang.org/x/text/encoding/charmap"

	"seehuhn.de/go/pdfops"
)

// MonospaceWidth is the advance width of all glyphs of the standard
// Courier fonts, in 1/1000 text space units.
const MonospaceWidth = 600

// StandardFont returns a font dictionary for one of the 14 standard
// fonts, using WinAnsiEncoding.  The font program is not embedded.
func StandardFont(baseFont pdfops.Name) pdfops.Dict {
	return pdfops.Dict{
		"Type":     pdfops.Name("Font"),
		"Subtype":  pdfops.Name("Type1"),
		"BaseFont": baseFont,
		"Encoding": pdfops.Name("WinAnsiEncoding"),
	}
}

// WinAnsi encodes s for use with a font using WinAnsiEncoding.  Characters
// which cannot be encoded are replaced by '?'.
func WinAnsi(s string) pdfops.String {
	res := make(pdfops.String, 0, len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		res = append(res, c)
	}
	return res
}
