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

// Package transform provides the document transformations of this module
// as functions which take and return serialized PDF files.
//
// Every transforming function parses its input, applies the requested
// changes, updates the document information dictionary and serializes the
// result.  Errors caused by invalid input are reported as
// *pdfops.InvalidFileContentError.  Errors of type
// *pdfops.PageNotFoundError, *pdfops.BarcodeExtractionFailedError and
// *pdfops.ResourceUnavailableError are returned unchanged.
package transform

import (
	"errors"
	"log/slog"
	"time"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/attach"
	"seehuhn.de/go/pdfops/docinfo"
	"seehuhn.de/go/pdfops/images"
	"seehuhn.de/go/pdfops/pdfcopy"
	"seehuhn.de/go/pdfops/stamp"
)

// DefaultProducer is stored in the /Producer entry of output documents,
// if Options.Producer is empty.
const DefaultProducer = "seehuhn.de/go/pdfops"

// Options control the transformations.  A nil *Options is valid and
// selects the defaults for all fields.
type Options struct {
	// Logger receives progress messages.  If this is nil, messages are
	// discarded.
	Logger *slog.Logger

	// Watermark describes the watermark used by Watermark, WatermarkAll
	// and MergeAndWatermark.
	Watermark *stamp.WatermarkOptions

	// HeaderFooter describes the placement of header and footer images
	// used by PostProcess.
	HeaderFooter *stamp.HeaderFooterOptions

	// Producer is recorded in the document information dictionary of
	// output documents.  If this is empty, DefaultProducer is used.
	Producer string

	// Now returns the modification time recorded in output documents.
	// If this is nil, time.Now is used.
	Now func() time.Time
}

func (opt *Options) logger() *slog.Logger {
	if opt == nil || opt.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return opt.Logger
}

func (opt *Options) watermark() *stamp.WatermarkOptions {
	if opt == nil {
		return nil
	}
	return opt.Watermark
}

// parse reads a PDF file.  All errors are reported as
// *pdfops.InvalidFileContentError.
func parse(data []byte) (*pdfops.Document, error) {
	doc, err := pdfops.Parse(data)
	if err != nil {
		return nil, pdfops.WrapInvalid(err)
	}
	return doc, nil
}

// finish updates the metadata of doc and serializes the document.
func finish(doc *pdfops.Document, opt *Options) ([]byte, error) {
	producer := DefaultProducer
	now := time.Now
	if opt != nil {
		if opt.Producer != "" {
			producer = opt.Producer
		}
		if opt.Now != nil {
			now = opt.Now
		}
	}

	err := docinfo.Touch(doc, producer, now())
	if err != nil {
		return nil, wrap(err)
	}
	out, err := pdfops.Serialize(doc)
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// wrap converts err to a *pdfops.InvalidFileContentError, unless it is
// one of the error types which are passed on to the caller unchanged.
func wrap(err error) error {
	var (
		notFound    *pdfops.PageNotFoundError
		barcode     *pdfops.BarcodeExtractionFailedError
		unavailable *pdfops.ResourceUnavailableError
	)
	if errors.As(err, &notFound) || errors.As(err, &barcode) || errors.As(err, &unavailable) {
		return err
	}
	return pdfops.WrapInvalid(err)
}

// Merge concatenates the pages of the given documents.  If fewer than two
// documents are given, the result is empty and no error is returned.
func Merge(inputs [][]byte, opt *Options) ([]byte, error) {
	doc, err := merge(inputs, opt)
	if doc == nil || err != nil {
		return nil, err
	}
	return finish(doc, opt)
}

// MergeAndWatermark concatenates the pages of the given documents and
// then adds a watermark to every page.  If fewer than two documents are
// given, the result is empty and no error is returned.
func MergeAndWatermark(inputs [][]byte, opt *Options) ([]byte, error) {
	doc, err := merge(inputs, opt)
	if doc == nil || err != nil {
		return nil, err
	}
	err = watermark(doc, opt)
	if err != nil {
		return nil, err
	}
	return finish(doc, opt)
}

func merge(inputs [][]byte, opt *Options) (*pdfops.Document, error) {
	log := opt.logger()
	if len(inputs) < 2 {
		log.Info("not enough documents to merge", "count", len(inputs))
		return nil, nil
	}

	docs := make([]*pdfops.Document, len(inputs))
	for i, data := range inputs {
		doc, err := parse(data)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}

	doc, err := pdfcopy.ImportPages(docs)
	if err != nil {
		return nil, wrap(err)
	}
	n, err := pdfcopy.PageCount(doc)
	if err != nil {
		return nil, wrap(err)
	}
	log.Info("documents merged", "count", len(inputs), "pages", n)
	return doc, nil
}

// Watermark adds a watermark to every page of the document.
func Watermark(data []byte, opt *Options) ([]byte, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	err = watermark(doc, opt)
	if err != nil {
		return nil, err
	}
	return finish(doc, opt)
}

// WatermarkAll adds a watermark to every page of each of the documents.
// The documents are processed independently.
func WatermarkAll(inputs [][]byte, opt *Options) ([][]byte, error) {
	res := make([][]byte, len(inputs))
	for i, data := range inputs {
		out, err := Watermark(data, opt)
		if err != nil {
			return nil, err
		}
		res[i] = out
	}
	return res, nil
}

func watermark(doc *pdfops.Document, opt *Options) error {
	n, err := stamp.Watermark(doc, opt.watermark())
	if err != nil {
		return wrap(err)
	}
	opt.logger().Info("document watermarked", "pages", n)
	return nil
}

// AddAttachments embeds the given files into the document.
func AddAttachments(data []byte, files []attach.Attachment, opt *Options) ([]byte, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	err = attach.Embed(doc, files)
	if err != nil {
		return nil, wrap(err)
	}
	opt.logger().Info("files attached", "count", len(files))
	return finish(doc, opt)
}

// Attachments returns the files embedded in the document, indexed by
// name.  If extensions are given, the result is empty unless every
// embedded file has one of the given extensions.  See [attach.Extract].
func Attachments(data []byte, opt *Options, extensions ...string) (map[string][]byte, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	files, err := attach.Extract(doc, extensions...)
	if err != nil {
		return nil, err
	}
	opt.logger().Info("files extracted", "count", len(files))
	return files, nil
}

// BarcodeImages returns the images placed on the first page of the first
// document.  If no documents are given, the result is empty.  If the page
// has no /XObject resources, a *pdfops.BarcodeExtractionFailedError is
// returned.
func BarcodeImages(inputs [][]byte, opt *Options) ([][]byte, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	doc, err := parse(inputs[0])
	if err != nil {
		return nil, err
	}
	res, err := images.ExtractXObjectImages(doc, 1)
	if err != nil {
		return nil, wrap(err)
	}
	opt.logger().Info("images extracted", "page", 1, "count", len(res))
	return res, nil
}

// PageCount returns the number of pages of the document.
func PageCount(data []byte, opt *Options) (int, error) {
	doc, err := parse(data)
	if err != nil {
		return 0, err
	}
	n, err := pdfcopy.PageCount(doc)
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// Page returns a document which contains only the given page of the
// input.  Page numbers start at 1.
func Page(data []byte, pageNo int, opt *Options) ([]byte, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	out, err := pdfcopy.ExtractPage(doc, pageNo)
	if err != nil {
		return nil, wrap(err)
	}
	opt.logger().Info("page extracted", "page", pageNo)
	return finish(out, opt)
}

// AddFoldingLines strokes the given lines on every page of the document.
// If no lines are given, the document is returned unchanged.
func AddFoldingLines(data []byte, lines []stamp.FoldingLine, opt *Options) ([]byte, error) {
	if len(lines) == 0 {
		return data, nil
	}
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	n, err := stamp.FoldingLines(doc, lines)
	if err != nil {
		return nil, wrap(err)
	}
	opt.logger().Info("folding lines added", "pages", n, "lines", len(lines))
	return finish(doc, opt)
}

// PostProcess adds the header and footer images provided by dec to the
// first page of the document.
func PostProcess(data []byte, dec stamp.Decorator, opt *Options) ([]byte, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	var hf *stamp.HeaderFooterOptions
	if opt != nil {
		hf = opt.HeaderFooter
	}
	err = stamp.HeaderFooter(doc, dec, hf)
	if err != nil {
		return nil, wrap(err)
	}
	opt.logger().Info("header and footer added",
		"header", dec.HeaderEnabled(), "footer", dec.FooterEnabled())
	return finish(doc, opt)
}
