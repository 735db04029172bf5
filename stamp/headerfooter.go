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
	"errors"
	"io/fs"
	"os"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/pagetree"
)

// A Decorator supplies the header and footer images for [HeaderFooter].
type Decorator interface {
	HeaderEnabled() bool
	FooterEnabled() bool
	HeaderImage() ([]byte, error)
	FooterImage() ([]byte, error)
}

// HeaderFooterOptions describes where headers and footers are placed.
// Zero values select the defaults.
type HeaderFooterOptions struct {
	// Margin is the distance between the edges of the media box and the
	// content area.  The default is 36.
	Margin float64

	// HeaderOffset is the distance between the top of the content area
	// and the bottom of the header image.  The default is 40.
	HeaderOffset float64

	// FooterOffset is the distance between the bottom of the content area
	// and the bottom of the footer image.  The default is 5.
	FooterOffset float64

	// HeaderWidth and HeaderHeight give the box the header image is
	// scaled to fit into.  The defaults are 250 and 100.
	HeaderWidth  float64
	HeaderHeight float64

	// FooterHeight is the maximum height of the footer image.  The
	// default is 100.  The footer can use the full width of the content
	// area.
	FooterHeight float64
}

func (opt *HeaderFooterOptions) withDefaults() HeaderFooterOptions {
	var res HeaderFooterOptions
	if opt != nil {
		res = *opt
	}
	setDefault := func(x *float64, val float64) {
		if *x <= 0 {
			*x = val
		}
	}
	setDefault(&res.Margin, 36)
	setDefault(&res.HeaderOffset, 40)
	setDefault(&res.FooterOffset, 5)
	setDefault(&res.HeaderWidth, 250)
	setDefault(&res.HeaderHeight, 100)
	setDefault(&res.FooterHeight, 100)
	return res
}

// HeaderFooter draws the header and footer images supplied by dec onto the
// first page of the document.
//
// The header is placed at the left margin, HeaderOffset below the top
// margin.  The footer is placed at the left margin, FooterOffset above the
// bottom margin.  If an image cannot be obtained, the error from the
// Decorator is returned; this is normally a
// *pdfops.ResourceUnavailableError.
func HeaderFooter(doc *pdfops.Document, dec Decorator, opt *HeaderFooterOptions) error {
	o := opt.withDefaults()

	pages, err := pagetree.FindPages(doc)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return &pdfops.PageNotFoundError{Page: 1}
	}
	page := pages[0]

	box := page.MediaBox
	left := box.LLx + o.Margin
	right := box.URx - o.Margin
	top := box.URy - o.Margin
	bottom := box.LLy + o.Margin

	if dec.HeaderEnabled() {
		data, err := dec.HeaderImage()
		if err != nil {
			return err
		}
		err = StaticImage(doc, page, data, left, top-o.HeaderOffset, o.HeaderWidth, o.HeaderHeight)
		if err != nil {
			return err
		}
	}
	if dec.FooterEnabled() {
		data, err := dec.FooterImage()
		if err != nil {
			return err
		}
		err = StaticImage(doc, page, data, left, bottom+o.FooterOffset, right-left, o.FooterHeight)
		if err != nil {
			return err
		}
	}
	return nil
}

// An ImageSource locates an image either in the file system or in a set
// of bundled resources.
type ImageSource struct {
	// Editable selects EditablePath instead of BundledPath.
	Editable bool

	// EditablePath is a path in the operating system's file system.
	EditablePath string

	// BundledPath is a path inside Bundled.
	BundledPath string
	Bundled     fs.FS
}

// Bytes returns the contents of the image file.  If the file cannot be
// read, a *pdfops.ResourceUnavailableError is returned.
func (s *ImageSource) Bytes() ([]byte, error) {
	if s.Editable {
		data, err := os.ReadFile(s.EditablePath)
		if err != nil {
			return nil, &pdfops.ResourceUnavailableError{Path: s.EditablePath, Err: err}
		}
		return data, nil
	}

	if s.Bundled == nil {
		return nil, &pdfops.ResourceUnavailableError{Path: s.BundledPath, Err: errNoBundle}
	}
	data, err := fs.ReadFile(s.Bundled, s.BundledPath)
	if err != nil {
		return nil, &pdfops.ResourceUnavailableError{Path: s.BundledPath, Err: err}
	}
	return data, nil
}

var errNoBundle = errors.New("no bundled resources")

// StaticDecorator is a Decorator which reads the header and footer images
// from ImageSources.  A nil source disables the corresponding image.
type StaticDecorator struct {
	Header *ImageSource
	Footer *ImageSource
}

// HeaderEnabled implements the [Decorator] interface.
func (d *StaticDecorator) HeaderEnabled() bool { return d.Header != nil }

// FooterEnabled implements the [Decorator] interface.
func (d *StaticDecorator) FooterEnabled() bool { return d.Footer != nil }

// HeaderImage implements the [Decorator] interface.
func (d *StaticDecorator) HeaderImage() ([]byte, error) { return d.Header.Bytes() }

// FooterImage implements the [Decorator] interface.
func (d *StaticDecorator) FooterImage() ([]byte, error) { return d.Footer.Bytes() }

var _ Decorator = (*StaticDecorator)(nil)
