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

// Package graphics writes PDF content streams.
//
// A [Writer] emits graphics operators to an io.Writer and keeps track of
// the resources referenced by the content stream.  The Writer only checks
// the nesting of operators; it does not track the graphics state.
package graphics

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/internal/float"
)

// A Category is one of the sub-dictionaries of a resource dictionary.
type Category pdfops.Name

// The resource categories used by this package.
//
// See section 7.8.3 of ISO 32000-2:2020.
const (
	CatExtGState Category = "ExtGState"
	CatXObject   Category = "XObject"
	CatFont      Category = "Font"
)

// Writer writes a PDF content stream.
type Writer struct {
	Content io.Writer

	// Resources is the resource dictionary for the content stream.
	// New resources are added to the appropriate sub-dictionaries.  A
	// sub-dictionary is replaced by a direct copy before it is first
	// modified, so that dictionaries shared with other pages are not
	// changed.
	Resources pdfops.Dict

	// Err is the first error which occurred while writing the content
	// stream.  Once Err is set, all further operations are ignored.
	Err error

	r             pdfops.Getter
	currentObject objectType
	nesting       []pairType
	resName       map[catRes]pdfops.Name
	owned         map[Category]bool
}

type catRes struct {
	cat Category
	ref pdfops.Reference
}

type pairType byte

const (
	pairTypeQ  pairType = iota + 1 // q ... Q
	pairTypeBT                     // BT ... ET
)

// See Figure 9 (p. 113) of PDF 32000-1:2008.
type objectType int

const (
	objPage objectType = 1 << iota
	objPath
	objText
)

func (s objectType) String() string {
	switch s {
	case objPage:
		return "page"
	case objPath:
		return "path"
	case objText:
		return "text"
	default:
		return "objectType(" + strconv.Itoa(int(s)) + ")"
	}
}

// NewWriter allocates a new Writer.  The getter r is used to resolve
// references inside the resource dictionary.  If resources is nil, a new
// resource dictionary is allocated.
func NewWriter(out io.Writer, r pdfops.Getter, resources pdfops.Dict) *Writer {
	if resources == nil {
		resources = pdfops.Dict{}
	}
	return &Writer{
		Content:       out,
		Resources:     resources,
		r:             r,
		currentObject: objPage,
		resName:       make(map[catRes]pdfops.Name),
		owned:         make(map[Category]bool),
	}
}

// Close checks that all q/Q and BT/ET pairs are balanced and returns the
// first error encountered while writing.
func (w *Writer) Close() error {
	if w.Err != nil {
		return w.Err
	}
	if len(w.nesting) > 0 {
		return errors.New("unbalanced graphics operators")
	}
	return nil
}

// isValid returns true, if the current graphics object is one of the given
// types and if w.Err is nil.  Otherwise it sets w.Err and returns false.
func (w *Writer) isValid(cmd string, ss objectType) bool {
	if w.Err != nil {
		return false
	}

	if w.currentObject&ss != 0 {
		return true
	}

	w.Err = fmt.Errorf("unexpected state %q for %q", w.currentObject, cmd)
	return false
}

func coord(x float64) string {
	return float.Format(x, 3)
}

// ResourceName returns a name which can be used to refer to a resource from
// within the content stream.  The resource is added to the resource
// dictionary under a name which is not yet used in the given category.
// Indirect objects are only added once.
func (w *Writer) ResourceName(cat Category, obj pdfops.Object) pdfops.Name {
	ref, isRef := obj.(pdfops.Reference)
	if isRef {
		if name, ok := w.resName[catRes{cat, ref}]; ok {
			return name
		}
	}

	dict, err := w.getCategoryDict(cat)
	if err != nil {
		w.Err = err
		return ""
	}
	name := generateName(cat, dict)
	dict[name] = obj

	if isRef {
		w.resName[catRes{cat, ref}] = name
	}
	return name
}

func (w *Writer) getCategoryDict(cat Category) (pdfops.Dict, error) {
	key := pdfops.Name(cat)
	if w.owned[cat] {
		return w.Resources[key].(pdfops.Dict), nil
	}

	orig, err := pdfops.GetDict(w.r, w.Resources[key])
	if err != nil {
		return nil, fmt.Errorf("/Resources /%s: %w", cat, err)
	}
	dict := orig.Clone()
	if dict == nil {
		dict = pdfops.Dict{}
	}
	w.Resources[key] = dict
	w.owned[cat] = true
	return dict, nil
}

func generateName(cat Category, dict pdfops.Dict) pdfops.Name {
	var name pdfops.Name

	prefix := getCategoryPrefix(cat)
	numUsed := len(dict)
	for k := numUsed + 1; ; k-- {
		name = prefix + pdfops.Name(strconv.Itoa(k))
		if _, isUsed := dict[name]; !isUsed {
			break
		}
	}

	return name
}

func getCategoryPrefix(cat Category) pdfops.Name {
	switch cat {
	case CatFont:
		return "F"
	case CatExtGState:
		return "E"
	case CatXObject:
		return "X"
	default:
		return "R"
	}
}
