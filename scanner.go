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
	"strconv"
)

// maxNesting limits the depth of nested arrays and dictionaries.
const maxNesting = 256

// scanner reads PDF objects from an in-memory copy of a file.
type scanner struct {
	data []byte
	pos  int

	// base is the offset of data within the file, for error messages
	base int64

	// getInt is used to resolve indirect /Length entries of streams.
	// If it is nil, or if it fails, the stream data is delimited by
	// searching for the "endstream" keyword.
	getInt func(Object) (Integer, error)

	depth int
}

func newScanner(data []byte, pos int, getInt func(Object) (Integer, error)) *scanner {
	return &scanner{
		data:   data,
		pos:    pos,
		getInt: getInt,
	}
}

func (s *scanner) filePos() int64 {
	return s.base + int64(s.pos)
}

func (s *scanner) errorf(format string, args ...any) error {
	return &MalformedDocumentError{
		Pos: s.filePos(),
		Err: fmt.Errorf(format, args...),
	}
}

// ReadIndirectObject reads an object of the form "n g obj ... endobj".
func (s *scanner) ReadIndirectObject() (Reference, Object, error) {
	// Some files point the xref entries at the end of the previous line.
	s.SkipWhiteSpace()

	number, err := s.ReadInteger()
	if err != nil {
		return 0, nil, err
	}
	s.SkipWhiteSpace()
	generation, err := s.ReadInteger()
	if err != nil {
		return 0, nil, err
	}
	s.SkipWhiteSpace()
	err = s.SkipString("obj")
	if err != nil {
		return 0, nil, err
	}
	if number < 0 || number > math.MaxUint32 || generation < 0 || generation > math.MaxUint16 {
		return 0, nil, s.errorf("invalid object number %d %d", number, generation)
	}
	ref := NewReference(uint32(number), uint16(generation))

	s.SkipWhiteSpace()
	if s.HasPrefix("endobj") {
		// "n g obj endobj" represents the null object
		s.pos += 6
		return ref, nil, nil
	}

	obj, err := s.ReadObject()
	if err != nil {
		return 0, nil, err
	}

	// Some files omit "endobj".  Only complain if something other than
	// the start of the next object follows.
	s.SkipWhiteSpace()
	if s.HasPrefix("endobj") {
		s.pos += 6
	}

	return ref, obj, nil
}

// ReadObject reads a direct object.  Integers followed by a second integer
// and the keyword "R" are combined into a Reference.
func (s *scanner) ReadObject() (Object, error) {
	s.SkipWhiteSpace()
	if s.pos >= len(s.data) {
		return nil, &MalformedDocumentError{Pos: s.filePos(), Err: io.ErrUnexpectedEOF}
	}

	c := s.data[s.pos]
	switch {
	case s.HasPrefix("null"):
		s.pos += 4
		return nil, nil
	case s.HasPrefix("true"):
		s.pos += 4
		return Bool(true), nil
	case s.HasPrefix("false"):
		s.pos += 5
		return Bool(false), nil
	case c == '/':
		return s.ReadName()
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		obj, err := s.ReadNumber()
		if err != nil {
			return nil, err
		}
		if a, isInt := obj.(Integer); isInt && a >= 0 {
			if ref, ok := s.tryReference(a); ok {
				return ref, nil
			}
		}
		return obj, nil
	case s.HasPrefix("<<"):
		dict, err := s.ReadDict()
		if err != nil {
			return nil, err
		}

		// check whether this is the start of a stream
		save := s.pos
		s.SkipWhiteSpace()
		if !s.HasPrefix("stream") {
			s.pos = save
			return dict, nil
		}
		return s.ReadStreamData(dict)
	case c == '(':
		s.pos++
		return s.ReadQuotedString()
	case c == '<':
		s.pos++
		return s.ReadHexString()
	case c == '[':
		s.pos++
		return s.ReadArray()
	}
	return nil, s.errorf("unexpected character %q", c)
}

// tryReference checks whether the integer a, which has just been read, is
// the start of an indirect reference "a b R".  If not, the scanner position
// is left unchanged.
func (s *scanner) tryReference(a Integer) (Reference, bool) {
	save := s.pos
	s.SkipWhiteSpace()
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start || s.pos-start > 5 {
		s.pos = save
		return 0, false
	}
	b, _ := strconv.Atoi(string(s.data[start:s.pos]))
	s.SkipWhiteSpace()
	if !s.HasPrefix("R") || s.pos+1 < len(s.data) && !isSpace[s.data[s.pos+1]] && !isDelimiter[s.data[s.pos+1]] {
		s.pos = save
		return 0, false
	}
	s.pos++
	if a > math.MaxUint32 || b > math.MaxUint16 {
		s.pos = save
		return 0, false
	}
	return NewReference(uint32(a), uint16(b)), true
}

// ReadInteger reads an integer.
func (s *scanner) ReadInteger() (Integer, error) {
	start := s.pos
	if s.pos < len(s.data) && (s.data[s.pos] == '+' || s.data[s.pos] == '-') {
		s.pos++
	}
	for s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		s.pos++
	}
	x, err := strconv.ParseInt(string(s.data[start:s.pos]), 10, 64)
	if err != nil {
		s.pos = start
		return 0, &MalformedDocumentError{Pos: s.filePos(), Err: err}
	}
	return Integer(x), nil
}

// ReadNumber reads an integer or real number.
func (s *scanner) ReadNumber() (Object, error) {
	start := s.pos
	hasDot := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '.' && !hasDot {
			hasDot = true
		} else if (c == '+' || c == '-') && s.pos == start {
			// sign
		} else if c < '0' || c > '9' {
			break
		}
		s.pos++
	}
	res := string(s.data[start:s.pos])

	if hasDot {
		x, err := strconv.ParseFloat(res, 64)
		if err != nil {
			if res == "." || res == "-." || res == "+." {
				return Real(0), nil
			}
			return nil, &MalformedDocumentError{Pos: s.filePos(), Err: err}
		}
		return Real(x), nil
	}

	x, err := strconv.ParseInt(res, 10, 64)
	if err != nil {
		if res == "-" || res == "+" {
			return Integer(0), nil
		}
		y, errFloat := strconv.ParseFloat(res, 64)
		if errFloat == nil {
			return Real(y), nil
		}
		return nil, &MalformedDocumentError{Pos: s.filePos(), Err: err}
	}
	return Integer(x), nil
}

// ReadQuotedString reads a ()-delimited string, starting after the opening
// bracket.
func (s *scanner) ReadQuotedString() (String, error) {
	var res []byte
	parenCount := 0
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.data) {
				break
			}
			c = s.data[s.pos]
			s.pos++
			switch c {
			case 'n':
				res = append(res, '\n')
			case 'r':
				res = append(res, '\r')
			case 't':
				res = append(res, '\t')
			case 'b':
				res = append(res, '\b')
			case 'f':
				res = append(res, '\f')
			case '\r':
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := c - '0'
				for i := 0; i < 2 && s.pos < len(s.data); i++ {
					d := s.data[s.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val*8 + (d - '0')
					s.pos++
				}
				res = append(res, val)
			default:
				res = append(res, c)
			}
		case '(':
			parenCount++
			res = append(res, c)
		case ')':
			if parenCount == 0 {
				return String(res), nil
			}
			parenCount--
			res = append(res, c)
		case '\r':
			if s.pos < len(s.data) && s.data[s.pos] == '\n' {
				s.pos++
			}
			res = append(res, '\n')
		default:
			res = append(res, c)
		}
	}
	return nil, s.errorf("unterminated string")
}

// ReadHexString reads a <>-delimited string, starting after the opening
// angled bracket.
func (s *scanner) ReadHexString() (String, error) {
	var res []byte
	var hexVal byte
	first := true
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c == '>':
			if !first {
				res = append(res, 16*hexVal)
			}
			return String(res), nil
		case isSpace[c]:
			continue
		default:
			return nil, s.errorf("invalid character %q in hex string", c)
		}
		if first {
			hexVal = d
		} else {
			res = append(res, 16*hexVal+d)
		}
		first = !first
	}
	return nil, s.errorf("unterminated hex string")
}

// ReadName reads a PDF name object.
func (s *scanner) ReadName() (Name, error) {
	err := s.SkipString("/")
	if err != nil {
		return "", err
	}

	var res []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isSpace[c] || isDelimiter[c] {
			break
		}
		s.pos++
		if c == '#' && s.pos+1 < len(s.data) {
			v, err := strconv.ParseUint(string(s.data[s.pos:s.pos+2]), 16, 8)
			if err == nil {
				res = append(res, byte(v))
				s.pos += 2
				continue
			}
		}
		res = append(res, c)
	}
	return Name(res), nil
}

// ReadArray reads an array, starting after the opening "[".
func (s *scanner) ReadArray() (Array, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxNesting {
		return nil, s.errorf("objects nested too deeply")
	}

	array := Array{}
	for {
		s.SkipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, s.errorf("unterminated array")
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return array, nil
		}
		obj, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		array = append(array, obj)
	}
}

// ReadDict reads a PDF dictionary.
func (s *scanner) ReadDict() (Dict, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxNesting {
		return nil, s.errorf("objects nested too deeply")
	}

	err := s.SkipString("<<")
	if err != nil {
		return nil, err
	}

	dict := Dict{}
	for {
		s.SkipWhiteSpace()
		if s.HasPrefix(">>") {
			s.pos += 2
			return dict, nil
		}
		if s.pos >= len(s.data) {
			return nil, s.errorf("unterminated dictionary")
		}

		key, err := s.ReadName()
		if err != nil {
			return nil, err
		}
		val, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		if val != nil {
			dict[key] = val
		}
	}
}

// ReadStreamData reads the data of a PDF Stream, starting after the Dict.
func (s *scanner) ReadStreamData(dict Dict) (*Stream, error) {
	s.SkipWhiteSpace()
	err := s.SkipString("stream")
	if err != nil {
		return nil, err
	}
	if s.HasPrefix("\r\n") {
		s.pos += 2
	} else if s.HasPrefix("\n") || s.HasPrefix("\r") {
		s.pos++
	}
	start := s.pos

	length := -1
	if s.getInt != nil {
		l, err := s.getInt(dict["Length"])
		if err == nil && l >= 0 && int64(l) <= int64(len(s.data)-start) {
			length = int(l)
		}
	} else if l, ok := dict["Length"].(Integer); ok && l >= 0 && int64(l) <= int64(len(s.data)-start) {
		length = int(l)
	}

	if length >= 0 {
		s.pos = start + length
		s.SkipWhiteSpace()
		if !s.HasPrefix("endstream") {
			length = -1
		}
	}

	if length < 0 {
		// The /Length entry is missing or wrong.  Find the end of the
		// stream data by searching for the "endstream" keyword.
		idx := bytes.Index(s.data[start:], []byte("endstream"))
		if idx < 0 {
			s.pos = start
			return nil, s.errorf("stream without endstream")
		}
		end := start + idx
		if end > start && s.data[end-1] == '\n' {
			end--
		}
		if end > start && s.data[end-1] == '\r' {
			end--
		}
		length = end - start
		s.pos = start + idx
	}
	s.pos += len("endstream")

	return NewEncodedStream(dict, s.data[start:start+length]), nil
}

// ReadHeaderVersion reads the "%PDF-x.y" header line.
func (s *scanner) ReadHeaderVersion() (Version, error) {
	// Some files have junk before the header.  Accept up to 1024 bytes.
	limit := min(len(s.data), 1024)
	idx := bytes.Index(s.data[:limit], []byte("%PDF-"))
	if idx < 0 {
		return 0, &MalformedDocumentError{Err: errors.New("PDF header not found")}
	}
	s.pos = idx + 5
	start := s.pos
	for s.pos < len(s.data) && (s.data[s.pos] == '.' || s.data[s.pos] >= '0' && s.data[s.pos] <= '9') {
		s.pos++
	}
	ver, err := ParseVersion(string(s.data[start:s.pos]))
	if err != nil {
		return 0, &MalformedDocumentError{Pos: int64(start), Err: err}
	}
	return ver, nil
}

// SkipWhiteSpace skips all input (including comments) until a non-whitespace
// character is found.
func (s *scanner) SkipWhiteSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		if !isSpace[c] {
			return
		}
		s.pos++
	}
}

// SkipString skips the string pat in the input.  If the input does not
// start with pat, an error is returned.
func (s *scanner) SkipString(pat string) error {
	if !s.HasPrefix(pat) {
		found := s.data[s.pos:min(s.pos+len(pat), len(s.data))]
		return s.errorf("expected %q but found %q", pat, found)
	}
	s.pos += len(pat)
	return nil
}

// HasPrefix reports whether the remaining input starts with pat.
func (s *scanner) HasPrefix(pat string) bool {
	return s.pos <= len(s.data) && bytes.HasPrefix(s.data[s.pos:], []byte(pat))
}

var isSpace = [256]bool{
	0:  true,
	9:  true,
	10: true,
	12: true,
	13: true,
	32: true,
}

var isDelimiter = [256]bool{
	'(': true,
	')': true,
	'<': true,
	'>': true,
	'[': true,
	']': true,
	'{': true,
	'}': true,
	'/': true,
	'%': true,
}
