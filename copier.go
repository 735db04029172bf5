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
	"slices"

	"golang.org/x/exp/maps"
)

// A Copier is used to copy objects from one PDF document to another. The
// Copier keeps track of the objects that have already been copied and
// ensures that each object is copied only once.
//
// Indirect objects are allocated in the target document as needed, and
// references are translated accordingly.  All dictionaries, arrays and
// stream payloads are duplicated, so that the source document is never
// modified through the copy.
type Copier struct {
	trans map[Reference]Reference
	omit  map[Reference]bool
	r     Getter
	w     *Document
}

// NewCopier creates a new Copier.
func NewCopier(w *Document, r Getter) *Copier {
	c := &Copier{
		trans: make(map[Reference]Reference),
		omit:  make(map[Reference]bool),
		w:     w,
		r:     r,
	}
	return c
}

// Copy copies an object from the source document to the target document,
// recursively.
//
// The returned object has the same type as the input object, except that
// references to omitted objects are replaced by nil.
func (c *Copier) Copy(obj Object) (Object, error) {
	switch x := obj.(type) {
	case Dict:
		return c.CopyDict(x)
	case Array:
		return c.CopyArray(x)
	case *Stream:
		dict, err := c.CopyDict(x.Dict)
		if err != nil {
			return nil, err
		}
		delete(dict, "Length")
		return x.clone(dict), nil
	case String:
		return append(String{}, x...), nil
	case Reference:
		if c.omit[x] {
			return nil, nil
		}
		return c.CopyReference(x)
	default:
		return obj, nil
	}
}

// CopyDict copies a dictionary from the source document to the target
// document.
func (c *Copier) CopyDict(obj Dict) (Dict, error) {
	res := make(Dict, len(obj))
	// Keys are visited in sorted order, so that the numbering of copied
	// objects is reproducible.
	keys := maps.Keys(obj)
	slices.Sort(keys)
	for _, key := range keys {
		val := obj[key]
		repl, err := c.Copy(val)
		if err != nil {
			return nil, err
		}
		if repl != nil {
			res[key] = repl
		}
	}
	return res, nil
}

// CopyArray copies an array from the source document to the target
// document.
func (c *Copier) CopyArray(obj Array) (Array, error) {
	res := make(Array, len(obj))
	for i, val := range obj {
		repl, err := c.Copy(val)
		if err != nil {
			return nil, err
		}
		res[i] = repl
	}
	return res, nil
}

// CopyReference copies an indirect object from the source document to the
// target document, and returns the reference of the copy.
func (c *Copier) CopyReference(obj Reference) (Reference, error) {
	newRef, ok := c.trans[obj]
	if ok {
		return newRef, nil
	}
	newRef = c.w.Alloc()
	c.trans[obj] = newRef

	val, err := c.r.Get(obj)
	if err != nil {
		return 0, err
	}
	trans, err := c.Copy(val)
	if err != nil {
		return 0, err
	}
	c.w.Put(newRef, trans)

	return newRef, nil
}

// Redirect arranges for references to origRef in the source document to be
// replaced by newRef, instead of copying the object.
func (c *Copier) Redirect(origRef, newRef Reference) {
	c.trans[origRef] = newRef
}

// Omit arranges for references to origRef in the source document to be
// replaced by null.  Dictionary entries with such values are dropped.
func (c *Copier) Omit(origRef Reference) {
	c.omit[origRef] = true
}
