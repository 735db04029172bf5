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

package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"seehuhn.de/go/pdfops"
)

var errShortData = errors.New("image data too short")

// decodePixels converts the decoded sample data of the image to a Go
// image.
func (img *ImageXObject) decodePixels(data []byte) (image.Image, error) {
	bpc := img.BitsPerComponent
	switch bpc {
	case 1, 2, 4, 8, 16:
		// pass
	default:
		return nil, &pdfops.UnsupportedStructureError{
			What: fmt.Sprintf("%d bits per component", bpc),
		}
	}

	cs := &colorSpace{channels: 1}
	if !img.ImageMask {
		if img.ColorSpace == nil {
			return nil, &pdfops.UnsupportedStructureError{What: "image without color space"}
		}
		var err error
		cs, err = getColorSpace(img.r, img.resources, img.ColorSpace, 0)
		if err != nil {
			return nil, err
		}
	}

	w, h, n := img.Width, img.Height, cs.channels
	rowBytes := (w*n*bpc + 7) / 8
	if len(data) < rowBytes*h {
		return nil, &pdfops.InvalidFileContentError{
			Err: fmt.Errorf("%w: %d < %d", errShortData, len(data), rowBytes*h),
		}
	}

	decode := img.decodeArray(cs)
	maxVal := float64(uint32(1)<<bpc - 1)
	rect := image.Rect(0, 0, w, h)

	var res interface {
		image.Image
		Set(x, y int, c colorValue)
	}
	switch {
	case cs.palette != nil:
		res = &palettedImage{image.NewPaletted(rect, cs.palette)}
	case n == 1:
		res = &grayImage{image.NewGray(rect)}
	case n == 3:
		res = &rgbImage{image.NewRGBA(rect)}
	default:
		res = &cmykImage{image.NewCMYK(rect)}
	}

	s := &sampleReader{data: data, bpc: bpc}
	var c colorValue
	for y := range h {
		s.seekRow(y * rowBytes)
		for x := range w {
			for i := range n {
				v := float64(s.next())
				dMin, dMax := decode[2*i], decode[2*i+1]
				c[i] = dMin + v*(dMax-dMin)/maxVal
			}
			res.Set(x, y, c)
		}
	}
	return res, nil
}

// decodeArray returns the /Decode array of the image, or the default
// array if /Decode is missing or malformed.  For indexed images, the
// decoded values are palette indices; otherwise they are in the range
// [0, 1].
func (img *ImageXObject) decodeArray(cs *colorSpace) []float64 {
	n := cs.channels
	res := make([]float64, 2*n)
	for i := range n {
		res[2*i+1] = 1
	}
	if cs.palette != nil {
		res[1] = float64(uint32(1)<<img.BitsPerComponent - 1)
	}

	a, _ := pdfops.GetArray(img.r, img.Stream.Dict["Decode"])
	if len(a) != 2*n {
		return res
	}
	given := make([]float64, 2*n)
	for i, obj := range a {
		x, err := pdfops.GetNumber(img.r, obj)
		if err != nil {
			return res
		}
		given[i] = x
	}
	return given
}

// sampleReader reads samples of a fixed bit width, most significant bit
// first.
type sampleReader struct {
	data   []byte
	bitPos int
	bpc    int
}

func (s *sampleReader) seekRow(byteOffset int) {
	s.bitPos = 8 * byteOffset
}

func (s *sampleReader) next() uint16 {
	switch s.bpc {
	case 8:
		v := s.data[s.bitPos/8]
		s.bitPos += 8
		return uint16(v)
	case 16:
		i := s.bitPos / 8
		s.bitPos += 16
		return uint16(s.data[i])<<8 | uint16(s.data[i+1])
	}
	b := s.data[s.bitPos/8]
	shift := 8 - s.bpc - s.bitPos%8
	s.bitPos += s.bpc
	return uint16(b>>shift) & (1<<s.bpc - 1)
}

// colorValue holds the decoded components of one pixel.
type colorValue [4]float64

func to8(x float64) uint8 {
	return uint8(math.Round(255 * min(max(x, 0), 1)))
}

type grayImage struct{ *image.Gray }

func (img *grayImage) Set(x, y int, c colorValue) {
	img.Pix[img.PixOffset(x, y)] = to8(c[0])
}

type rgbImage struct{ *image.RGBA }

func (img *rgbImage) Set(x, y int, c colorValue) {
	i := img.PixOffset(x, y)
	img.Pix[i] = to8(c[0])
	img.Pix[i+1] = to8(c[1])
	img.Pix[i+2] = to8(c[2])
	img.Pix[i+3] = 255
}

type cmykImage struct{ *image.CMYK }

func (img *cmykImage) Set(x, y int, c colorValue) {
	i := img.PixOffset(x, y)
	for k := range 4 {
		img.Pix[i+k] = to8(c[k])
	}
}

type palettedImage struct{ *image.Paletted }

func (img *palettedImage) Set(x, y int, c colorValue) {
	idx := int(math.Round(c[0]))
	idx = min(max(idx, 0), len(img.Palette)-1)
	img.Pix[img.PixOffset(x, y)] = uint8(idx)
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := png.Encode(buf, img)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
