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

package pagetree

import (
	"bytes"
	"fmt"

	"seehuhn.de/go/pdfops"
)

// ContentStream returns the decoded content stream of a page.
// It handles cases where /Contents is a single stream or an array of
// streams.  Decoded streams are concatenated, separated by newline
// characters.  If the /Contents entry is absent, null, or an empty array,
// nil is returned.
func ContentStream(r pdfops.Getter, pageDict pdfops.Dict) ([]byte, error) {
	contents, err := pdfops.Resolve(r, pageDict["Contents"])
	if err != nil {
		return nil, err
	}

	var a pdfops.Array
	switch contents := contents.(type) {
	case nil:
		return nil, nil
	case pdfops.Array:
		a = contents
	default:
		a = pdfops.Array{contents}
	}

	buf := &bytes.Buffer{}
	for i, obj := range a {
		stm, err := pdfops.GetStream(r, obj)
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		} else if stm == nil {
			continue
		}
		data, err := stm.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
