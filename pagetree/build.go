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

package pagetree

import (
	"fmt"

	"seehuhn.de/go/pdfops"
)

// maxDegree is the maximum number of kids of a node in trees constructed
// by Build.
const maxDegree = 16

type nodeInfo struct {
	ref       pdfops.Reference
	pageCount int
}

// Build arranges the given pages into a balanced page tree and returns
// the reference of the root node.  The page dictionaries must already be
// stored in doc; their /Parent entries are updated in place.  The entries
// of rootAttrs are added to the root node.
func Build(doc *pdfops.Document, pages []pdfops.Reference, rootAttrs pdfops.Dict) (pdfops.Reference, error) {
	level := make([]nodeInfo, len(pages))
	for i, ref := range pages {
		level[i] = nodeInfo{ref: ref, pageCount: 1}
	}

	for len(level) > maxDegree {
		var next []nodeInfo
		for start := 0; start < len(level); start += maxDegree {
			end := min(start+maxDegree, len(level))
			node, err := makeNode(doc, level[start:end], nil)
			if err != nil {
				return 0, err
			}
			next = append(next, node)
		}
		level = next
	}

	root, err := makeNode(doc, level, rootAttrs)
	if err != nil {
		return 0, err
	}
	return root.ref, nil
}

func makeNode(doc *pdfops.Document, kids []nodeInfo, attrs pdfops.Dict) (nodeInfo, error) {
	ref := doc.Alloc()

	kidRefs := make(pdfops.Array, len(kids))
	total := 0
	for i, kid := range kids {
		obj, err := doc.Get(kid.ref)
		if err != nil {
			return nodeInfo{}, err
		}
		dict, ok := obj.(pdfops.Dict)
		if !ok {
			return nodeInfo{}, fmt.Errorf("page tree node %s is not a dictionary", kid.ref)
		}
		dict["Parent"] = ref
		kidRefs[i] = kid.ref
		total += kid.pageCount
	}

	node := pdfops.Dict{
		"Type":  pdfops.Name("Pages"),
		"Kids":  kidRefs,
		"Count": pdfops.Integer(total),
	}
	for key, val := range attrs {
		node[key] = val
	}
	doc.Put(ref, node)

	return nodeInfo{ref: ref, pageCount: total}, nil
}
