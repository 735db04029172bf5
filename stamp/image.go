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

package stamp

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/graphics"
	"seehuhn.de/go/pdfops/pagetree"
)

// An Image is an image XObject which has been added to a document.
type Image struct {
	Ref    pdfops.Reference
	Width  int
	Height int
}

// EmbedImage adds an image XObject to doc.  The data can be in any format
// supported by the image package; PNG, JPEG, GIF, BMP, TIFF and WebP are
// registered by this package.  JPEG files are embedded unchanged, other
// formats are converted to RGB or gray pixels, with a soft mask for the
// alpha channel if needed.
func EmbedImage(doc *pdfops.Document, data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &pdfops.InvalidFileContentError{Err: fmt.Errorf("image: %w", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &pdfops.InvalidFileContentError{Err: errEmptyImage}
	}

	if format == "jpeg" {
		var cs pdfops.Name
		switch cfg.ColorModel {
		case color.GrayModel:
			cs = "DeviceGray"
		case color.CMYKModel:
			cs = "DeviceCMYK"
		default:
			cs = "DeviceRGB"
		}
		dict := pdfops.Dict{
			"Type":             pdfops.Name("XObject"),
			"Subtype":          pdfops.Name("Image"),
			"Width":            pdfops.Integer(cfg.Width),
			"Height":           pdfops.Integer(cfg.Height),
			"ColorSpace":       cs,
			"BitsPerComponent": pdfops.Integer(8),
			"Filter":           pdfops.Name("DCTDecode"),
		}
		if cs == "DeviceCMYK" {
			// Adobe CMYK JPEG files store inverted values
			dict["Decode"] = pdfops.Array{
				pdfops.Integer(1), pdfops.Integer(0), pdfops.Integer(1), pdfops.Integer(0),
				pdfops.Integer(1), pdfops.Integer(0), pdfops.Integer(1), pdfops.Integer(0),
			}
		}
		ref := doc.Add(pdfops.NewEncodedStream(dict, data))
		return &Image{Ref: ref, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &pdfops.InvalidFileContentError{Err: fmt.Errorf("image: %w", err)}
	}
	return embedPixels(doc, img), nil
}

var errEmptyImage = errors.New("image has no pixels")

func embedPixels(doc *pdfops.Document, img image.Image) *Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	dict := pdfops.Dict{
		"Type":             pdfops.Name("XObject"),
		"Subtype":          pdfops.Name("Image"),
		"Width":            pdfops.Integer(width),
		"Height":           pdfops.Integer(height),
		"BitsPerComponent": pdfops.Integer(8),
	}

	var pix []byte
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		gray := image.NewGray(image.Rect(0, 0, width, height))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
		pix = gray.Pix
		dict["ColorSpace"] = pdfops.Name("DeviceGray")
	default:
		rgba, ok := img.(*image.NRGBA)
		if !ok || b.Min != (image.Point{}) || rgba.Stride != 4*width {
			rgba = image.NewNRGBA(image.Rect(0, 0, width, height))
			draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		}
		pix = make([]byte, 0, 3*width*height)
		alpha := make([]byte, 0, width*height)
		opaque := true
		for i := 0; i < len(rgba.Pix); i += 4 {
			pix = append(pix, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
			alpha = append(alpha, rgba.Pix[i+3])
			opaque = opaque && rgba.Pix[i+3] == 0xFF
		}
		dict["ColorSpace"] = pdfops.Name("DeviceRGB")
		if !opaque {
			dict["SMask"] = doc.Add(pdfops.NewStream(pdfops.Dict{
				"Type":             pdfops.Name("XObject"),
				"Subtype":          pdfops.Name("Image"),
				"Width":            pdfops.Integer(width),
				"Height":           pdfops.Integer(height),
				"ColorSpace":       pdfops.Name("DeviceGray"),
				"BitsPerComponent": pdfops.Integer(8),
			}, alpha))
		}
	}

	ref := doc.Add(pdfops.NewStream(dict, pix))
	return &Image{Ref: ref, Width: width, Height: height}
}

// StaticImage draws an image on top of the given page.  The image is
// scaled, preserving its aspect ratio, to the largest size which fits into
// a box of fitWidth × fitHeight PDF units, and the lower left corner of the
// image is placed at (x, y).  One image pixel corresponds to one PDF unit
// before scaling.
func StaticImage(doc *pdfops.Document, page *pagetree.Page, data []byte, x, y, fitWidth, fitHeight float64) error {
	img, err := EmbedImage(doc, data)
	if err != nil {
		return err
	}
	return img.Draw(doc, page, x, y, fitWidth, fitHeight)
}

// Draw draws an embedded image on top of the given page.  The arguments
// are as for [StaticImage].
func (img *Image) Draw(doc *pdfops.Document, page *pagetree.Page, x, y, fitWidth, fitHeight float64) error {
	w := float64(img.Width)
	h := float64(img.Height)
	scale := min(fitWidth/w, fitHeight/h)

	return Overlay(doc, page, func(out *graphics.Writer) {
		out.PushGraphicsState()
		out.Transform(matrix.Matrix{w * scale, 0, 0, h * scale, x, y})
		out.DrawXObject(img.Ref)
		out.PopGraphicsState()
	})
}
