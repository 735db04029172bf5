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
	"errors"
	"fmt"
	"strconv"
)

// MalformedDocumentError indicates that a PDF document could not be parsed.
type MalformedDocumentError struct {
	Pos int64
	Err error
}

func (err *MalformedDocumentError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "malformed PDF document" + middle + tail
}

func (err *MalformedDocumentError) Unwrap() error {
	return err.Err
}

// UnsupportedStructureError indicates that a document is syntactically
// valid, but lacks required entries or uses features which are not
// supported, for example encryption.
type UnsupportedStructureError struct {
	What string
}

func (err *UnsupportedStructureError) Error() string {
	return "unsupported document structure: " + err.What
}

// UnsupportedFilterError is returned when stream data uses a filter which
// cannot be decoded.
type UnsupportedFilterError struct {
	Filter Name
}

func (err *UnsupportedFilterError) Error() string {
	return "unsupported filter " + string(err.Filter)
}

// InvalidFileContentError is returned when a document transformation fails.
// The underlying cause is available via errors.Unwrap.
type InvalidFileContentError struct {
	Err error
}

func (err *InvalidFileContentError) Error() string {
	if err.Err == nil {
		return "invalid file content"
	}
	return "invalid file content: " + err.Err.Error()
}

func (err *InvalidFileContentError) Unwrap() error {
	return err.Err
}

// PageNotFoundError is returned when a page number is out of range.
// Page numbers start at 1.
type PageNotFoundError struct {
	Page int
}

func (err *PageNotFoundError) Error() string {
	return fmt.Sprintf("page not found: %d", err.Page)
}

// ResourceUnavailableError is returned when an image or other external
// resource needed for a transformation cannot be obtained.
type ResourceUnavailableError struct {
	Path string
	Err  error
}

func (err *ResourceUnavailableError) Error() string {
	msg := "resource unavailable"
	if err.Path != "" {
		msg += " " + strconv.Quote(err.Path)
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *ResourceUnavailableError) Unwrap() error {
	return err.Err
}

// BarcodeExtractionFailedError is returned when a page has no XObject
// resources from which images could be extracted.
type BarcodeExtractionFailedError struct {
	Page int
}

func (err *BarcodeExtractionFailedError) Error() string {
	return fmt.Sprintf("no XObject resources on page %d", err.Page)
}

// WrapInvalid wraps err as an InvalidFileContentError, unless it
// already is one.  Nil is returned unchanged.
func WrapInvalid(err error) error {
	if err == nil {
		return nil
	}
	var e *InvalidFileContentError
	if errors.As(err, &e) {
		return err
	}
	return &InvalidFileContentError{Err: err}
}

var (
	errNoDate    = errors.New("not a valid date string")
	errRefLoop   = errors.New("reference loop")
	errNoStartXR = errors.New("startxref not found")
)
