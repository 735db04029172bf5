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

// Package filter implements the decoding side of the PDF stream filters.
//
// All functions in this package operate on complete byte slices.  The
// image codecs (DCTDecode, JPXDecode and JBIG2Decode) are not implemented
// here, since their output is used as image files directly.
package filter

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
	"golang.org/x/image/ccitt"
)

// Flate decodes zlib-compressed data.  Streams with a missing or damaged
// zlib header are decoded as raw deflate data, and truncated streams
// return the data decoded so far.
func Flate(data []byte) ([]byte, error) {
	var r io.ReadCloser
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err == nil {
		r = zr
	} else {
		r = flate.NewReader(bytes.NewReader(data))
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0 {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("FlateDecode: %w", err)
	}
	return out, nil
}

// LZW decodes LZW-compressed data.
// If earlyChange is set, code widths increase one code early, as required
// by the default setting of the /EarlyChange parameter.
func LZW(data []byte, earlyChange bool) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer r.Close()

	out, err := io.ReadAll(r)
	if errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0 {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("LZWDecode: %w", err)
	}
	return out, nil
}

// CCITTParams holds the decode parameters of a CCITTFaxDecode filter.
type CCITTParams struct {
	// K selects the encoding: negative values mean pure two-dimensional
	// encoding (Group 4), zero means one-dimensional encoding (Group 3).
	K int

	Columns          int
	Rows             int
	EncodedByteAlign bool
	BlackIs1         bool
}

// CCITTFax decodes CCITT Group 3 or Group 4 fax data.
// The result has one bit per pixel, each row is padded to a full byte.
// Unless BlackIs1 is set, 0 bits represent black pixels.
func CCITTFax(data []byte, p *CCITTParams) ([]byte, error) {
	if p.K > 0 {
		return nil, errors.New("CCITTFaxDecode: mixed 1D/2D encoding (K > 0) not supported")
	}
	if p.Columns <= 0 {
		return nil, fmt.Errorf("CCITTFaxDecode: invalid number of columns %d", p.Columns)
	}

	mode := ccitt.Group3
	if p.K < 0 {
		mode = ccitt.Group4
	}
	rows := p.Rows
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}
	opts := &ccitt.Options{
		Invert: p.BlackIs1,
		Align:  p.EncodedByteAlign,
	}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, mode, p.Columns, rows, opts)

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("CCITTFaxDecode: %w", err)
	}
	return out, nil
}
