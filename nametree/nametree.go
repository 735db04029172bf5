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

// Package nametree implements PDF name trees.
//
// Name trees serve a similar purpose to dictionaries, associating keys and
// values, but using string keys that are ordered lexicographically.  Leaf
// nodes hold the key-value pairs in a /Names array, intermediate nodes
// refer to their children via /Kids.
package nametree

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"seehuhn.de/go/pdfops"
)

// maxLeafSize is the maximal number of entries in a leaf node written by
// Write.
const maxLeafSize = 64

// maxDepth limits the nesting of nodes when reading, to protect against
// cycles.
const maxDepth = 32

// An Entry is a key-value pair of a name tree.
type Entry struct {
	Key   pdfops.String
	Value pdfops.Object
}

var errTooDeep = errors.New("name tree too deep")

// Read returns all entries of the name tree rooted at root, in the order
// they appear in the tree.  If root is null, the result is empty.
func Read(r pdfops.Getter, root pdfops.Object) ([]Entry, error) {
	node, err := pdfops.GetDict(r, root)
	if node == nil {
		return nil, err
	}
	var res []Entry
	err = readNode(r, node, &res, 0)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func readNode(r pdfops.Getter, node pdfops.Dict, res *[]Entry, depth int) error {
	if depth > maxDepth {
		return &pdfops.MalformedDocumentError{Err: errTooDeep}
	}

	if names, ok := node["Names"]; ok {
		arr, err := pdfops.GetArray(r, names)
		if err != nil {
			return err
		}
		if len(arr)%2 != 0 {
			return &pdfops.MalformedDocumentError{
				Err: fmt.Errorf("name tree leaf with %d array elements", len(arr)),
			}
		}
		for i := 0; i < len(arr); i += 2 {
			key, err := pdfops.GetString(r, arr[i])
			if err != nil {
				return err
			}
			*res = append(*res, Entry{Key: key, Value: arr[i+1]})
		}
		return nil
	}

	kids, err := pdfops.GetArray(r, node["Kids"])
	if err != nil {
		return err
	}
	for _, kid := range kids {
		child, err := pdfops.GetDict(r, kid)
		if err != nil {
			return err
		} else if child == nil {
			continue
		}
		err = readNode(r, child, res, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of entries in the name tree.
func Size(r pdfops.Getter, root pdfops.Object) (int, error) {
	entries, err := Read(r, root)
	return len(entries), err
}

// Lookup returns the value stored under key, or nil if the key is not
// present.
func Lookup(r pdfops.Getter, root pdfops.Object, key string) (pdfops.Object, error) {
	entries, err := Read(r, root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if string(e.Key) == key {
			return e.Value, nil
		}
	}
	return nil, nil
}

// Write stores a name tree with the given entries in doc and returns the
// reference of the root node.  The entries are sorted by key.  Small trees
// consist of a single node, larger trees get one level of intermediate
// nodes per factor of maxLeafSize.
func Write(doc *pdfops.Document, entries []Entry) pdfops.Reference {
	entries = slices.Clone(entries)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return bytes.Compare(a.Key, b.Key)
	})

	if len(entries) <= maxLeafSize {
		return doc.Add(pdfops.Dict{"Names": namesArray(entries)})
	}

	type node struct {
		ref         pdfops.Reference
		first, last pdfops.String
	}
	var level []node
	for start := 0; start < len(entries); start += maxLeafSize {
		chunk := entries[start:min(start+maxLeafSize, len(entries))]
		first, last := chunk[0].Key, chunk[len(chunk)-1].Key
		ref := doc.Add(pdfops.Dict{
			"Names":  namesArray(chunk),
			"Limits": pdfops.Array{first, last},
		})
		level = append(level, node{ref, first, last})
	}
	for len(level) > maxLeafSize {
		var next []node
		for start := 0; start < len(level); start += maxLeafSize {
			chunk := level[start:min(start+maxLeafSize, len(level))]
			kids := make(pdfops.Array, len(chunk))
			for i, n := range chunk {
				kids[i] = n.ref
			}
			first, last := chunk[0].first, chunk[len(chunk)-1].last
			ref := doc.Add(pdfops.Dict{
				"Kids":   kids,
				"Limits": pdfops.Array{first, last},
			})
			next = append(next, node{ref, first, last})
		}
		level = next
	}

	kids := make(pdfops.Array, len(level))
	for i, n := range level {
		kids[i] = n.ref
	}
	return doc.Add(pdfops.Dict{"Kids": kids})
}

func namesArray(entries []Entry) pdfops.Array {
	res := make(pdfops.Array, 0, 2*len(entries))
	for _, e := range entries {
		res = append(res, e.Key, e.Value)
	}
	return res
}
