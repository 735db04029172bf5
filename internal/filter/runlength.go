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

package filter

import "errors"

// RunLength decodes data in run-length format.
//
// A length byte L in the range 0-127 is followed by L+1 literal bytes.
// A length byte in the range 129-255 is followed by one byte, which is
// repeated 257-L times.  The length byte 128 marks the end of data.
func RunLength(data []byte) ([]byte, error) {
	var out []byte
	for len(data) > 0 {
		length := data[0]
		data = data[1:]

		switch {
		case length == 128:
			return out, nil
		case length < 128:
			count := int(length) + 1
			if count > len(data) {
				return nil, errTruncatedRun
			}
			out = append(out, data[:count]...)
			data = data[count:]
		default:
			if len(data) == 0 {
				return nil, errTruncatedRun
			}
			count := 257 - int(length)
			for range count {
				out = append(out, data[0])
			}
			data = data[1:]
		}
	}
	return out, nil
}

var errTruncatedRun = errors.New("RunLengthDecode: truncated run")
