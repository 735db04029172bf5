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
	"compress/zlib"
	"io"
	"strconv"
	"strings"
)

// Stream represent a stream object in a PDF file.
//
// The payload of a stream is in one of two states.  Streams read from a
// file start out encoded: the raw bytes are kept exactly as found in the
// file, together with the filter chain from the stream dictionary.  The
// decoded bytes are computed on the first call to [Stream.Decode] and are
// cached.  Streams created by [NewStream] start out decoded; the writer
// compresses them using FlateDecode.
//
// The byte slices held by a Stream are never modified in place.
type Stream struct {
	Dict

	raw     []byte
	decoded []byte
	state   streamState
}

type streamState uint8

const (
	// stateEncoded means that raw holds the payload as stored in the
	// file and decoded is only valid once hasDecoded is set.
	stateEncoded streamState = iota + 1

	// stateDecoded means that only decoded is valid.  The stream
	// dictionary has no /Filter entry.
	stateDecoded

	// stateEncodedAndDecoded means that both representations are valid.
	stateEncodedAndDecoded
)

// NewStream creates a stream with the given (unencoded) contents.
// Any /Filter and /DecodeParms entries in dict are removed.
func NewStream(dict Dict, data []byte) *Stream {
	if dict == nil {
		dict = Dict{}
	}
	delete(dict, "Filter")
	delete(dict, "DecodeParms")
	delete(dict, "Length")
	return &Stream{
		Dict:    dict,
		decoded: data,
		state:   stateDecoded,
	}
}

// NewEncodedStream creates a stream from data which is already encoded
// using the filters listed in dict.  The data is written to the output
// file unchanged.
func NewEncodedStream(dict Dict, raw []byte) *Stream {
	if dict == nil {
		dict = Dict{}
	}
	delete(dict, "Length")
	return &Stream{
		Dict:  dict,
		raw:   raw,
		state: stateEncoded,
	}
}

// IsDecoded reports whether the decoded stream data is available
// without further work.
func (x *Stream) IsDecoded() bool {
	return x.state != stateEncoded
}

// Raw returns the encoded stream data, as stored in the file.
// The second return value is false, if the stream was created from
// unencoded data.
func (x *Stream) Raw() ([]byte, bool) {
	if x.state == stateDecoded {
		return nil, false
	}
	return x.raw, true
}

// Decode returns the decoded stream data.  The result is cached.
// If r is not nil, it is used to resolve indirect /Filter and /DecodeParms
// entries.
//
// If one of the filters cannot be decoded, an *UnsupportedFilterError is
// returned.
func (x *Stream) Decode(r Getter) ([]byte, error) {
	if x.state != stateEncoded {
		return x.decoded, nil
	}
	data, rest, err := x.DecodeUntil(r, nil)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &UnsupportedFilterError{Filter: rest[0].Name}
	}
	x.decoded = data
	x.state = stateEncodedAndDecoded
	return data, nil
}

// DecodeUntil applies the filters of the stream, in order, until either all
// filters are applied or stop returns true for a filter name.  The
// remaining, unapplied filters are returned together with the partially
// decoded data.  If stop is nil, decoding stops at the first filter which
// is not implemented.
func (x *Stream) DecodeUntil(r Getter, stop func(Name) bool) ([]byte, []*FilterInfo, error) {
	if x.state != stateEncoded {
		return x.decoded, nil, nil
	}

	filters, err := x.Filters(r)
	if err != nil {
		return nil, nil, err
	}

	data := x.raw
	for i, fi := range filters {
		if stop != nil && stop(fi.Name) || !fi.IsSupported() {
			return data, filters[i:], nil
		}
		data, err = fi.Apply(data)
		if err != nil {
			return nil, nil, err
		}
	}
	return data, nil, nil
}

// clone returns a copy of the stream which uses dict as its dictionary.
func (x *Stream) clone(dict Dict) *Stream {
	return &Stream{
		Dict:    dict,
		raw:     bytes.Clone(x.raw),
		decoded: bytes.Clone(x.decoded),
		state:   x.state,
	}
}

func (x *Stream) String() string {
	res := []string{}
	tp, ok := x.Dict["Type"].(Name)
	if ok {
		res = append(res, string(tp)+" Stream")
	} else {
		res = append(res, "Stream")
	}
	if x.state == stateDecoded {
		res = append(res, strconv.Itoa(len(x.decoded))+" bytes")
	} else {
		res = append(res, strconv.Itoa(len(x.raw))+" bytes")
	}
	switch filter := x.Dict["Filter"].(type) {
	case Name:
		res = append(res, string(filter))
	case Array:
		for _, f := range filter {
			if name, ok := f.(Name); ok {
				res = append(res, string(name))
			}
		}
	}
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the Object interface.
//
// Encoded streams are written verbatim.  Decoded streams are compressed
// using FlateDecode.
func (x *Stream) PDF(w io.Writer) error {
	dict := x.Dict.Clone()
	if dict == nil {
		dict = Dict{}
	}

	var data []byte
	if x.state == stateDecoded {
		buf := &bytes.Buffer{}
		zw := zlib.NewWriter(buf)
		_, err := zw.Write(x.decoded)
		if err != nil {
			return err
		}
		err = zw.Close()
		if err != nil {
			return err
		}
		data = buf.Bytes()
		dict["Filter"] = Name("FlateDecode")
		delete(dict, "DecodeParms")
	} else {
		data = x.raw
	}
	dict["Length"] = Integer(len(data))

	err := dict.PDF(w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nstream\n")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nendstream")
	return err
}
