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

// Package images extracts raster images from the resources of PDF pages.
//
// Images compressed with an image codec (JPEG, JPEG 2000 or JBIG2) are
// returned in their original encoding.  All other images are decoded to
// pixels and re-encoded as PNG.
package images

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/pagetree"
)

// An ImageXObject is an image XObject found in the resources of a page.
type ImageXObject struct {
	// Name is the name of the image in the /XObject resource dictionary.
	Name pdfops.Name

	Width            int
	Height           int
	BitsPerComponent int

	// ImageMask is true for stencil masks.  These have one bit per pixel
	// and no color space.
	ImageMask bool

	// ColorSpace is the value of the /ColorSpace entry, with references
	// resolved.
	ColorSpace pdfops.Object

	// Filters is the filter chain of the image stream.
	Filters []*pdfops.FilterInfo

	Stream *pdfops.Stream

	r         pdfops.Getter
	resources pdfops.Dict
}

// PageImages returns the image XObjects listed in the resource dictionary
// of the given page.  Page numbers start at 1.  Images are returned in
// order of their resource names.
//
// If the page has no /XObject resources, a
// *pdfops.BarcodeExtractionFailedError is returned.  Image streams with
// missing or invalid /Width or /Height entries are skipped.
func PageImages(doc *pdfops.Document, pageNo int) ([]*ImageXObject, error) {
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		return nil, err
	}
	if pageNo < 1 || pageNo > len(pages) {
		return nil, &pdfops.PageNotFoundError{Page: pageNo}
	}
	page := pages[pageNo-1]

	xObjects, err := pdfops.GetDict(doc, page.Resources["XObject"])
	if err != nil {
		return nil, err
	} else if xObjects == nil {
		return nil, &pdfops.BarcodeExtractionFailedError{Page: pageNo}
	}

	var res []*ImageXObject
	names := maps.Keys(xObjects)
	slices.Sort(names)
	for _, name := range names {
		img, err := newImage(doc, page.Resources, name, xObjects[name])
		if isMalformed(err) {
			continue
		} else if err != nil {
			return nil, err
		}
		if img != nil {
			res = append(res, img)
		}
	}
	return res, nil
}

// newImage reads the image XObject stored under the given name.  If obj
// is not an image XObject, nil is returned.
func newImage(r pdfops.Getter, resources pdfops.Dict, name pdfops.Name, obj pdfops.Object) (*ImageXObject, error) {
	stm, err := pdfops.GetStream(r, obj)
	if err != nil || stm == nil {
		return nil, err
	}
	dict := stm.Dict
	if tp, _ := pdfops.GetName(r, dict["Subtype"]); tp != "Image" {
		return nil, nil
	}

	img := &ImageXObject{
		Name:      name,
		Stream:    stm,
		r:         r,
		resources: resources,
	}

	width, err := pdfops.GetInteger(r, dict["Width"])
	if err != nil {
		return nil, err
	}
	height, err := pdfops.GetInteger(r, dict["Height"])
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, &pdfops.MalformedDocumentError{
			Err: fmt.Errorf("image %s has invalid size %dx%d", name, width, height),
		}
	}
	img.Width = int(width)
	img.Height = int(height)

	isMask, err := pdfops.Resolve(r, dict["ImageMask"])
	if err != nil {
		return nil, err
	}
	img.ImageMask = isMask == pdfops.Bool(true)

	if img.ImageMask {
		img.BitsPerComponent = 1
	} else {
		bpc, err := pdfops.Optional(pdfops.GetInteger(r, dict["BitsPerComponent"]))
		if err != nil {
			return nil, err
		}
		img.BitsPerComponent = int(bpc)
		img.ColorSpace, err = pdfops.Resolve(r, dict["ColorSpace"])
		if err != nil {
			return nil, err
		}
	}

	img.Filters, err = stm.Filters(r)
	if err != nil {
		return nil, err
	}

	return img, nil
}

// Bytes returns the image as a standalone image file.  For images stored
// with DCTDecode, JPXDecode or JBIG2Decode the encoded image data is
// returned unchanged; otherwise the pixel data are decoded and converted
// to PNG format.
//
// Images which use unsupported filters or color spaces give a
// *pdfops.UnsupportedFilterError or a *pdfops.UnsupportedStructureError.
func (img *ImageXObject) Bytes() ([]byte, error) {
	data, rest, err := img.Stream.DecodeUntil(img.r, pdfops.IsImageCodec)
	if err != nil {
		return nil, pdfops.WrapInvalid(err)
	}
	switch {
	case len(rest) == 1 && pdfops.IsImageCodec(rest[0].Name):
		return data, nil
	case len(rest) > 0:
		return nil, &pdfops.UnsupportedFilterError{Filter: rest[0].Name}
	}

	pix, err := img.decodePixels(data)
	if err != nil {
		return nil, err
	}
	return encodePNG(pix)
}

// Format returns the file format of the data returned by Bytes: "jpeg",
// "jp2", "jbig2" or "png".
func (img *ImageXObject) Format() string {
	if n := len(img.Filters); n > 0 {
		switch img.Filters[n-1].Name {
		case "DCTDecode":
			return "jpeg"
		case "JPXDecode":
			return "jp2"
		case "JBIG2Decode":
			return "jbig2"
		}
	}
	return "png"
}

// ExtractXObjectImages returns the images referenced from the /XObject
// resources of the given page, as standalone image files.  Images which
// cannot be converted and images with empty data are skipped.
//
// If the page has no /XObject resources, a
// *pdfops.BarcodeExtractionFailedError is returned.  Corrupt image data
// gives a *pdfops.InvalidFileContentError.
func ExtractXObjectImages(doc *pdfops.Document, pageNo int) ([][]byte, error) {
	imgs, err := PageImages(doc, pageNo)
	if err != nil {
		return nil, err
	}

	var res [][]byte
	for _, img := range imgs {
		data, err := img.Bytes()
		if isUnsupported(err) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("image %s: %w", img.Name, pdfops.WrapInvalid(err))
		}
		if len(data) > 0 {
			res = append(res, data)
		}
	}
	return res, nil
}

func isMalformed(err error) bool {
	var e *pdfops.MalformedDocumentError
	return errors.As(err, &e)
}

func isUnsupported(err error) bool {
	var e1 *pdfops.UnsupportedFilterError
	var e2 *pdfops.UnsupportedStructureError
	return errors.As(err, &e1) || errors.As(err, &e2)
}
