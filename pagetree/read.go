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

// Package pagetree implements PDF page trees.
//
// Pages are found by an in-order traversal of the tree rooted at the
// /Pages entry of the document catalog.  Attributes which PDF allows to be
// inherited from intermediate nodes are resolved for every page.
package pagetree

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfops"
)

// Inheritable lists the page attributes which can be inherited from
// intermediate nodes of the page tree.
var Inheritable = []pdfops.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// Letter is the media box used for pages where no /MediaBox is given.
var Letter = rect.Rect{URx: 612, URy: 792}

// A Page is a leaf of the page tree, together with its inherited
// attributes.
type Page struct {
	// Ref is the reference of the page dictionary.
	Ref pdfops.Reference

	// Dict is the page dictionary, as stored in the document.
	Dict pdfops.Dict

	// Resources is the resource dictionary of the page, taking
	// inheritance into account.  This is nil if the page has no resources.
	Resources pdfops.Dict

	MediaBox rect.Rect
	CropBox  rect.Rect

	// Rotate is the page rotation in degrees, normalized to 0, 90, 180 or
	// 270.
	Rotate int

	// inherited holds the unresolved values of inheritable attributes
	// which are not present in Dict.
	inherited pdfops.Dict
}

// Materialize returns a copy of the page dictionary where all inherited
// attributes are stored in the page itself.  The copy is shallow: values
// are shared with the original dictionary.
func (p *Page) Materialize() pdfops.Dict {
	res := p.Dict.Clone()
	if res == nil {
		res = pdfops.Dict{}
	}
	for key, val := range p.inherited {
		if _, own := res[key]; !own {
			res[key] = val
		}
	}
	return res
}

var errCycle = errors.New("page tree contains a cycle")

// FindPages returns all pages of the document, in order.
//
// Cycles in the page tree and page tree nodes which are not indirect
// objects are reported as *pdfops.MalformedDocumentError.
func FindPages(doc *pdfops.Document) ([]*Page, error) {
	catalog, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	rootRef, ok := catalog["Pages"].(pdfops.Reference)
	if !ok {
		return nil, &pdfops.UnsupportedStructureError{What: "missing /Pages in catalog"}
	}

	type todoItem struct {
		ref       pdfops.Reference
		inherited pdfops.Dict
	}

	var res []*Page
	var seen bitset.BitSet
	seen.Set(uint(rootRef.Number()))
	todo := []todoItem{{ref: rootRef}}
	for len(todo) > 0 {
		k := len(todo) - 1
		item := todo[k]
		todo = todo[:k]

		node, err := pdfops.GetDict(doc, item.ref)
		if err != nil {
			return nil, err
		} else if node == nil {
			return nil, &pdfops.MalformedDocumentError{
				Err: fmt.Errorf("page tree node %s is null", item.ref),
			}
		}

		inherited := make(pdfops.Dict, len(Inheritable))
		for _, key := range Inheritable {
			if val, ok := node[key]; ok {
				inherited[key] = val
			} else if val, ok := item.inherited[key]; ok {
				inherited[key] = val
			}
		}

		tp, err := pdfops.GetName(doc, node["Type"])
		if err != nil {
			return nil, err
		}
		if tp == "" {
			if _, hasKids := node["Kids"]; hasKids {
				tp = "Pages"
			} else {
				tp = "Page"
			}
		}

		switch tp {
		case "Page":
			page, err := newPage(doc, item.ref, node, inherited)
			if err != nil {
				return nil, err
			}
			res = append(res, page)
		case "Pages":
			kids, err := pdfops.GetArray(doc, node["Kids"])
			if err != nil {
				return nil, err
			}
			for i := len(kids) - 1; i >= 0; i-- {
				kidRef, ok := kids[i].(pdfops.Reference)
				if !ok {
					return nil, &pdfops.MalformedDocumentError{
						Err: fmt.Errorf("page tree node %s has a direct kid", item.ref),
					}
				}
				if seen.Test(uint(kidRef.Number())) {
					return nil, &pdfops.MalformedDocumentError{Err: errCycle}
				}
				seen.Set(uint(kidRef.Number()))
				todo = append(todo, todoItem{ref: kidRef, inherited: inherited})
			}
		default:
			return nil, &pdfops.MalformedDocumentError{
				Err: fmt.Errorf("unexpected page tree node type %q", tp),
			}
		}
	}

	return res, nil
}

func newPage(r pdfops.Getter, ref pdfops.Reference, dict, attrs pdfops.Dict) (*Page, error) {
	page := &Page{
		Ref:       ref,
		Dict:      dict,
		inherited: pdfops.Dict{},
	}
	for key, val := range attrs {
		if _, own := dict[key]; !own {
			page.inherited[key] = val
		}
	}

	var err error
	page.Resources, err = pdfops.GetDict(r, attrs["Resources"])
	if err != nil {
		return nil, fmt.Errorf("page %s: /Resources: %w", ref, err)
	}

	page.MediaBox, err = GetRect(r, attrs["MediaBox"])
	if err != nil {
		return nil, fmt.Errorf("page %s: /MediaBox: %w", ref, err)
	}
	if page.MediaBox.IsZero() {
		page.MediaBox = Letter
	}
	page.CropBox, err = GetRect(r, attrs["CropBox"])
	if err != nil {
		return nil, fmt.Errorf("page %s: /CropBox: %w", ref, err)
	}
	if page.CropBox.IsZero() {
		page.CropBox = page.MediaBox
	}

	rot, err := pdfops.Optional(pdfops.GetInteger(r, attrs["Rotate"]))
	if err != nil {
		return nil, err
	}
	page.Rotate = int((rot%360+360)%360) / 90 * 90

	return page, nil
}

// GetRect reads a rectangle given as an array of four numbers.  The
// corners are normalized so that LLx <= URx and LLy <= URy.  If obj is
// null, the zero rectangle is returned.
func GetRect(r pdfops.Getter, obj pdfops.Object) (rect.Rect, error) {
	a, err := pdfops.GetArray(r, obj)
	if err != nil {
		return rect.Rect{}, err
	}
	if a == nil {
		return rect.Rect{}, nil
	}
	if len(a) != 4 {
		return rect.Rect{}, &pdfops.MalformedDocumentError{
			Err: fmt.Errorf("expected 4 numbers for rectangle, got %d", len(a)),
		}
	}
	var x [4]float64
	for i, val := range a {
		x[i], err = pdfops.GetNumber(r, val)
		if err != nil {
			return rect.Rect{}, err
		}
	}
	return rect.Rect{
		LLx: min(x[0], x[2]),
		LLy: min(x[1], x[3]),
		URx: max(x[0], x[2]),
		URy: max(x[1], x[3]),
	}, nil
}

// NumPages returns the number of pages in the document.
func NumPages(doc *pdfops.Document) (int, error) {
	pages, err := FindPages(doc)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}
