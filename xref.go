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

package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
)

// xRefEntry gives the location of one object in the file.
type xRefEntry struct {
	// InStream is the object number of the containing object stream,
	// or 0 if the object is stored directly in the file.
	InStream uint32

	// Pos is the byte offset of the object, or its index within the
	// object stream.  Free objects have Pos < 0.
	Pos int64

	Generation uint16
}

// IsFree reports whether the entry describes a free object.
func (entry *xRefEntry) IsFree() bool {
	return entry == nil || entry.Pos < 0
}

type xRefSubSection struct {
	Start, Size int
}

func findXRef(data []byte) (int64, error) {
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx < 0 {
		return 0, &MalformedDocumentError{Err: errNoStartXR}
	}

	s := newScanner(data, idx+9, nil)
	s.SkipWhiteSpace()
	xRefPos, err := s.ReadInteger()
	if err != nil {
		return 0, err
	}
	if xRefPos <= 0 || int64(xRefPos) >= int64(len(data)) {
		return 0, &MalformedDocumentError{
			Pos: s.filePos(),
			Err: errors.New("invalid xref position"),
		}
	}
	return int64(xRefPos), nil
}

// readXRef reads all cross-reference sections of the file, following /Prev
// and /XRefStm links.  Entries from newer sections take precedence.  The
// returned trailer contains the document-level entries, taken from the
// newest trailer dictionary which has them.
func readXRef(data []byte) (map[uint32]*xRefEntry, Dict, error) {
	start, err := findXRef(data)
	if err != nil {
		return nil, nil, err
	}

	xref := make(map[uint32]*xRefEntry)
	trailer := Dict{}
	seen := make(map[int64]bool)
	for {
		// avoid xref loops
		if seen[start] {
			break
		}
		seen[start] = true

		s := newScanner(data, int(start), nil)
		s.SkipWhiteSpace()

		var dict Dict
		if s.HasPrefix("xref") {
			dict, err = readXRefTable(xref, s)
			if err != nil {
				return nil, nil, err
			}

			if xRefStm, ok := dict["XRefStm"]; ok {
				zStart, ok := xRefStm.(Integer)
				if !ok || zStart <= 0 || int64(zStart) >= int64(len(data)) {
					return nil, nil, &MalformedDocumentError{
						Err: errors.New("invalid /XRefStm value"),
					}
				}
				_, err = readXRefStream(xref, newScanner(data, int(zStart), nil))
				if err != nil {
					return nil, nil, err
				}
			}
		} else {
			dict, err = readXRefStream(xref, s)
			if err != nil {
				return nil, nil, err
			}
		}

		for _, key := range []Name{"Root", "Encrypt", "Info", "ID"} {
			if _, done := trailer[key]; done {
				continue
			}
			if val, ok := dict[key]; ok {
				trailer[key] = val
			}
		}

		prev := dict["Prev"]
		if prev == nil {
			break
		}
		prevStart, ok := prev.(Integer)
		if !ok || prevStart <= 0 || int64(prevStart) >= int64(len(data)) {
			return nil, nil, &MalformedDocumentError{
				Pos: start,
				Err: fmt.Errorf("invalid /Prev value %s", Format(prev)),
			}
		}
		start = int64(prevStart)
	}

	return xref, trailer, nil
}

func readXRefTable(xref map[uint32]*xRefEntry, s *scanner) (Dict, error) {
	err := s.SkipString("xref")
	if err != nil {
		return nil, err
	}

	for {
		s.SkipWhiteSpace()
		if s.pos >= len(s.data) || s.data[s.pos] < '0' || s.data[s.pos] > '9' {
			break
		}

		start, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		s.SkipWhiteSpace()
		length, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if start < 0 || length < 0 || start+length > math.MaxUint32 {
			return nil, s.errorf("invalid xref subsection %d %d", start, length)
		}

		err = decodeXRefSection(xref, s, uint32(start), uint32(start+length))
		if err != nil {
			return nil, err
		}
	}

	err = s.SkipString("trailer")
	if err != nil {
		return nil, err
	}
	s.SkipWhiteSpace()
	return s.ReadDict()
}

// decodeXRefSection reads the entries of one xref subsection.  Each entry
// has the form "oooooooooo ggggg n", but the amount of white space varies
// between files, so the fields are read as separate tokens.
func decodeXRefSection(xref map[uint32]*xRefEntry, s *scanner, start, end uint32) error {
	for i := start; i < end; i++ {
		s.SkipWhiteSpace()
		a, err := s.ReadInteger()
		if err != nil {
			return err
		}
		s.SkipWhiteSpace()
		b, err := s.ReadInteger()
		if err != nil {
			return err
		}
		s.SkipWhiteSpace()
		if s.pos >= len(s.data) {
			return &MalformedDocumentError{Pos: s.filePos(), Err: io.ErrUnexpectedEOF}
		}
		c := s.data[s.pos]
		s.pos++

		if b > math.MaxUint16 {
			// fix a common error in some PDF files
			b = math.MaxUint16
			c = 'f'
		}

		if xref[i] != nil {
			continue
		}

		switch c {
		case 'f':
			xref[i] = &xRefEntry{Pos: -1, Generation: uint16(b)}
		case 'n':
			if a <= 0 {
				// some writers mark missing objects this way
				xref[i] = &xRefEntry{Pos: -1, Generation: uint16(b)}
			} else {
				xref[i] = &xRefEntry{Pos: int64(a), Generation: uint16(b)}
			}
		default:
			return &MalformedDocumentError{
				Pos: s.filePos(),
				Err: errors.New("malformed xref table"),
			}
		}
	}
	return nil
}

func readXRefStream(xref map[uint32]*xRefEntry, s *scanner) (Dict, error) {
	_, obj, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return nil, &MalformedDocumentError{
			Pos: s.filePos(),
			Err: errors.New("invalid xref stream"),
		}
	}
	dict := stream.Dict

	w, ss, err := checkXRefStreamDict(dict)
	if err != nil {
		return nil, err
	}
	data, err := stream.Decode(nil)
	if err != nil {
		return nil, &MalformedDocumentError{Pos: s.filePos(), Err: err}
	}
	err = decodeXRefStream(xref, data, w, ss)
	if err != nil {
		return nil, err
	}

	return dict, nil
}

func checkXRefStreamDict(dict Dict) ([]int, []*xRefSubSection, error) {
	malformed := func(msg string) error {
		return &MalformedDocumentError{Err: errors.New("xref stream: " + msg)}
	}

	size, ok := dict["Size"].(Integer)
	if !ok || size < 0 {
		return nil, nil, malformed("invalid /Size")
	}
	W, ok := dict["W"].(Array)
	if !ok || len(W) < 3 {
		return nil, nil, malformed("invalid /W")
	}
	var w []int
	for _, Wi := range W[:3] {
		wi, ok := Wi.(Integer)
		if !ok || wi < 0 || wi > 8 {
			return nil, nil, malformed("invalid /W")
		}
		w = append(w, int(wi))
	}

	var ss []*xRefSubSection
	switch index := dict["Index"].(type) {
	case nil:
		ss = append(ss, &xRefSubSection{0, int(size)})
	case Array:
		if len(index)%2 != 0 {
			return nil, nil, malformed("invalid /Index")
		}
		for i := 0; i < len(index); i += 2 {
			start, ok1 := index[i].(Integer)
			n, ok2 := index[i+1].(Integer)
			if !ok1 || !ok2 || start < 0 || n < 0 || start+n > math.MaxUint32 {
				return nil, nil, malformed("invalid /Index")
			}
			ss = append(ss, &xRefSubSection{int(start), int(n)})
		}
	default:
		return nil, nil, malformed("invalid /Index")
	}
	return w, ss, nil
}

func decodeXRefStream(xref map[uint32]*xRefEntry, data []byte, w []int, ss []*xRefSubSection) error {
	w0, w1, w2 := w[0], w[1], w[2]
	wTotal := w0 + w1 + w2
	if wTotal == 0 {
		return &MalformedDocumentError{Err: errors.New("xref stream: empty entries")}
	}

	for _, sec := range ss {
		for i := sec.Start; i < sec.Start+sec.Size; i++ {
			if len(data) < wTotal {
				return &MalformedDocumentError{Err: errors.New("xref stream: truncated data")}
			}
			buf := data[:wTotal]
			data = data[wTotal:]

			num := uint32(i)
			if xref[num] != nil {
				continue
			}

			tp := int64(1)
			if w0 > 0 {
				tp = decodeInt(buf[:w0])
			}
			a := decodeInt(buf[w0 : w0+w1])
			b := decodeInt(buf[w0+w1 : wTotal])
			switch tp {
			case 0:
				// free object
				xref[num] = &xRefEntry{Pos: -1, Generation: uint16(b)}
			case 1:
				// a = byte offset of the object, b = generation number
				xref[num] = &xRefEntry{Pos: a, Generation: uint16(b)}
			case 2:
				// a = number of the object stream, b = index within the stream
				if a <= 0 || a > math.MaxUint32 {
					return &MalformedDocumentError{Err: errors.New("xref stream: invalid object stream number")}
				}
				xref[num] = &xRefEntry{InStream: uint32(a), Pos: b}
			default:
				// unknown entry types are treated as null references
			}
		}
	}
	return nil
}

func decodeInt(buf []byte) (res int64) {
	for _, x := range buf {
		res = res<<8 | int64(x)
	}
	return res
}

func writeXRefTable(w io.Writer, xref []*xRefEntry, trailer Dict) error {
	_, err := fmt.Fprintf(w, "xref\n0 %d\n", len(xref))
	if err != nil {
		return err
	}
	for _, entry := range xref {
		if !entry.IsFree() {
			_, err = fmt.Fprintf(w, "%010d %05d n\r\n", entry.Pos, entry.Generation)
		} else {
			_, err = io.WriteString(w, "0000000000 65535 f\r\n")
		}
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, "trailer\n")
	if err != nil {
		return err
	}
	return trailer.PDF(w)
}
