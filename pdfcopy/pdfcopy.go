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

// Package pdfcopy copies pages between PDF documents.
//
// Pages are deep-copied into a fresh output document.  Inherited page
// attributes are stored in the copied pages, and a new page tree is built
// for the output.  The source documents are not modified.
package pdfcopy

import (
	"fmt"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/pagetree"
)

// ImportPages creates a new document which contains all pages of the given
// documents, in order.
//
// If any of the sources cannot be read, an *pdfops.InvalidFileContentError
// is returned.
func ImportPages(sources []*pdfops.Document) (*pdfops.Document, error) {
	v := pdfops.V1_0
	for _, src := range sources {
		v = max(v, src.Version)
	}
	out := pdfops.NewDocument(v)

	var pageRefs []pdfops.Reference
	for i, src := range sources {
		pages, err := pagetree.FindPages(src)
		if err != nil {
			return nil, &pdfops.InvalidFileContentError{
				Err: fmt.Errorf("document %d: %w", i+1, err),
			}
		}
		refs, err := copyPages(out, src, pages, pages)
		if err != nil {
			return nil, &pdfops.InvalidFileContentError{
				Err: fmt.Errorf("document %d: %w", i+1, err),
			}
		}
		pageRefs = append(pageRefs, refs...)
	}

	err := finish(out, pageRefs)
	if err != nil {
		return nil, &pdfops.InvalidFileContentError{Err: err}
	}
	return out, nil
}

// ExtractPage returns a new document which contains only the given page of
// doc.  Pages are numbered starting from 1.
//
// If pageNo is out of range, a *pdfops.PageNotFoundError is returned.
func ExtractPage(doc *pdfops.Document, pageNo int) (*pdfops.Document, error) {
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		return nil, &pdfops.InvalidFileContentError{Err: err}
	}
	if pageNo < 1 || pageNo > len(pages) {
		return nil, &pdfops.PageNotFoundError{Page: pageNo}
	}

	out := pdfops.NewDocument(doc.Version)
	refs, err := copyPages(out, doc, pages, pages[pageNo-1:pageNo])
	if err != nil {
		return nil, &pdfops.InvalidFileContentError{Err: err}
	}
	err = finish(out, refs)
	if err != nil {
		return nil, &pdfops.InvalidFileContentError{Err: err}
	}
	return out, nil
}

// PageCount returns the number of pages in doc.
func PageCount(doc *pdfops.Document) (int, error) {
	return pagetree.NumPages(doc)
}

// copyPages copies the pages in sel from src to out.  The slice all must
// contain all pages of src.  References to pages which are not copied, and
// to the nodes of the source page tree, are replaced by null.
func copyPages(out, src *pdfops.Document, all, sel []*pagetree.Page) ([]pdfops.Reference, error) {
	c := pdfops.NewCopier(out, src)

	res := make([]pdfops.Reference, len(sel))
	isSelected := make(map[pdfops.Reference]bool, len(sel))
	for i, page := range sel {
		res[i] = out.Alloc()
		c.Redirect(page.Ref, res[i])
		isSelected[page.Ref] = true
	}
	for _, page := range all {
		if !isSelected[page.Ref] {
			c.Omit(page.Ref)
		}
		omitParents(c, src, page.Dict)
	}

	for i, page := range sel {
		dict := page.Materialize()
		delete(dict, "Parent")
		copied, err := c.CopyDict(dict)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", page.Ref, err)
		}
		out.Put(res[i], copied)
	}
	return res, nil
}

// omitParents marks the ancestors of a page as omitted.
func omitParents(c *pdfops.Copier, r pdfops.Getter, node pdfops.Dict) {
	for range 64 {
		parent, ok := node["Parent"].(pdfops.Reference)
		if !ok {
			return
		}
		c.Omit(parent)
		next, err := pdfops.GetDict(r, parent)
		if err != nil || next == nil {
			return
		}
		node = next
	}
}

func finish(out *pdfops.Document, pageRefs []pdfops.Reference) error {
	root, err := pagetree.Build(out, pageRefs, nil)
	if err != nil {
		return err
	}
	out.Trailer["Root"] = out.Add(pdfops.Dict{
		"Type":  pdfops.Name("Catalog"),
		"Pages": root,
	})
	return nil
}
