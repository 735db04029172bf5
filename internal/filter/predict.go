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

const maxColumns = 1 << 20

// PredictParams describes the predictor used by FlateDecode and LZWDecode.
type PredictParams struct {
	// Predictor is 1 (no prediction), 2 (TIFF) or 10-15 (PNG).
	Predictor int

	// Colors is the number of color components per pixel.
	Colors int

	// BitsPerComponent is one of 1, 2, 4, 8 or 16.
	BitsPerComponent int

	// Columns is the number of pixels per row.
	Columns int
}

// Validate checks whether the parameters are usable.
func (p *PredictParams) Validate() error {
	switch p.Predictor {
	case 1, 2, 10, 11, 12, 13, 14, 15:
		// pass
	default:
		return fmt.Errorf("unsupported predictor %d", p.Predictor)
	}
	if p.Predictor == 1 {
		return nil
	}
	if p.Colors < 1 || p.Colors > 256 {
		return fmt.Errorf("invalid number of colors %d", p.Colors)
	}
	switch p.BitsPerComponent {
	case 1, 2, 4, 8, 16:
		// pass
	default:
		return fmt.Errorf("invalid BitsPerComponent %d", p.BitsPerComponent)
	}
	maxCols := min(maxColumns, (1<<31-1)/p.bitsPerPixel())
	if p.Columns < 1 || p.Columns > maxCols {
		return errors.New("invalid Columns value")
	}
	return nil
}

func (p *PredictParams) bitsPerPixel() int {
	return p.Colors * p.BitsPerComponent
}

func (p *PredictParams) bytesPerRow() int {
	return (p.bitsPerPixel()*p.Columns + 7) / 8
}

func (p *PredictParams) bytesPerPixel() int {
	return (p.bitsPerPixel() + 7) / 8
}

// Predict undoes the effect of a TIFF or PNG predictor.
// A trailing partial row is decoded as far as it goes.
func Predict(data []byte, p *PredictParams) ([]byte, error) {
	err := p.Validate()
	if err != nil {
		return nil, err
	}
	switch {
	case p.Predictor == 1:
		return data, nil
	case p.Predictor == 2:
		return unpredictTIFF(data, p), nil
	default:
		return unpredictPNG(data, p)
	}
}

// unpredictPNG decodes PNG-predicted rows.  In PDF, every row carries its
// own algorithm tag, independently of the value of /Predictor.
func unpredictPNG(data []byte, p *PredictParams) ([]byte, error) {
	rowLen := p.bytesPerRow()
	bpp := p.bytesPerPixel()

	out := make([]byte, 0, len(data)/(rowLen+1)*rowLen+rowLen)
	prev := make([]byte, rowLen)
	for len(data) > 0 {
		tag := data[0]
		n := min(rowLen, len(data)-1)
		row := make([]byte, rowLen)
		copy(row, data[1:1+n])
		data = data[1+n:]

		for i := range row {
			var left, up, upLeft byte
			if i >= bpp {
				left = row[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]

			switch tag {
			case 0: // None
			case 1: // Sub
				row[i] += left
			case 2: // Up
				row[i] += up
			case 3: // Average
				row[i] += byte((int(left) + int(up)) / 2)
			case 4: // Paeth
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("invalid PNG predictor tag %d", tag)
			}
		}

		out = append(out, row[:n]...)
		prev = row
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// unpredictTIFF undoes TIFF horizontal differencing.  Each component is
// stored as the difference to the same component of the pixel to its left.
func unpredictTIFF(data []byte, p *PredictParams) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	rowLen := p.bytesPerRow()
	bpc := p.BitsPerComponent
	nComp := p.Colors * p.Columns
	mask := uint32(1)<<bpc - 1

	for start := 0; start < len(out); start += rowLen {
		row := out[start:min(start+rowLen, len(out))]
		switch bpc {
		case 8:
			for i := p.Colors; i < len(row); i++ {
				row[i] += row[i-p.Colors]
			}
		case 16:
			for i := 2 * p.Colors; i+1 < len(row); i += 2 {
				j := i - 2*p.Colors
				v := uint16(row[i])<<8 | uint16(row[i+1])
				v += uint16(row[j])<<8 | uint16(row[j+1])
				row[i] = byte(v >> 8)
				row[i+1] = byte(v)
			}
		default:
			for k := p.Colors; k < nComp && (k*bpc)/8 < len(row); k++ {
				v := getBits(row, k, bpc) + getBits(row, k-p.Colors, bpc)
				setBits(row, k, bpc, v&mask)
			}
		}
	}
	return out
}

// getBits returns the k-th sample of width bpc from row.
func getBits(row []byte, k, bpc int) uint32 {
	bit := k * bpc
	shift := 8 - bpc - bit%8
	return uint32(row[bit/8]>>shift) & (1<<bpc - 1)
}

func setBits(row []byte, k, bpc int, v uint32) {
	bit := k * bpc
	shift := 8 - bpc - bit%8
	mask := byte(1<<bpc-1) << shift
	row[bit/8] = row[bit/8]&^mask | byte(v)<<shift
}
