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

import (
	"errors"
	"fmt"
)

// ASCIIHex decodes data in ASCII hexadecimal form.  Decoding stops at the
// end-of-data marker ">".  An odd number of digits is padded with a zero.
func ASCIIHex(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)

	readHigh := false
	var high byte
loop:
	for _, c := range data {
		var b byte
		switch {
		case c >= '0' && c <= '9':
			b = c - '0'
		case c >= 'A' && c <= 'F':
			b = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			b = c - 'a' + 10
		case isSpace(c):
			continue
		case c == '>':
			break loop
		default:
			return nil, fmt.Errorf("ASCIIHexDecode: invalid character %q", c)
		}

		if readHigh {
			out = append(out, high<<4|b)
			readHigh = false
		} else {
			high = b
			readHigh = true
		}
	}
	if readHigh {
		out = append(out, high<<4)
	}
	return out, nil
}

// ASCII85 decodes data in ASCII base-85 form.  Decoding stops at the
// end-of-data marker "~>".  An optional "<~" prefix is ignored.
func ASCII85(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*4/5+4)

	if len(data) >= 2 && data[0] == '<' && data[1] == '~' {
		data = data[2:]
	}

	var v uint32
	k := 0
	flush := func(n int) {
		buf := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		out = append(out, buf[:n]...)
	}

	for _, c := range data {
		switch {
		case isSpace(c):
			continue
		case c >= '!' && c < '!'+85:
			v = v*85 + uint32(c-'!')
			k++
		case c == 'z' && k == 0:
			v = 0
			k = 5
		case c == '~':
			switch k {
			case 0:
				// pass
			case 1:
				return nil, errors.New("ASCII85Decode: unexpected end marker")
			default:
				for i := k; i < 5; i++ {
					v = v*85 + 84
				}
				flush(k - 1)
			}
			return out, nil
		default:
			return nil, fmt.Errorf("ASCII85Decode: invalid character %q", c)
		}

		if k == 5 {
			flush(4)
			v = 0
			k = 0
		}
	}

	// The end marker is missing.  Decode the remaining group anyway.
	if k > 1 {
		for i := k; i < 5; i++ {
			v = v*85 + 84
		}
		flush(k - 1)
	}
	return out, nil
}

func isSpace(c byte) bool {
	switch c {
	case 0, 9, 10, 12, 13, 32:
		return true
	}
	return false
}
