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
	"math"
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// Document is a PDF document held in memory.
//
// All objects of the document live in an arena indexed by object number.
// Objects read from a file are parsed lazily, on first access, and are
// cached in the arena.  Objects can be replaced or added using
// [Document.Put] and [Document.Add].
//
// A Document is not safe for concurrent use.
type Document struct {
	// Version is the PDF version of the document.
	Version Version

	// Trailer holds the document-level entries of the trailer dictionary,
	// in particular /Root and /Info.
	Trailer Dict

	data    []byte
	xref    map[uint32]*xRefEntry
	objects map[uint32]Object
	objStms map[uint32]*objStm
	loading bitset.BitSet
	nextNum uint32
}

// Getter is implemented by all types which provide access to indirect
// objects.
type Getter interface {
	Get(ref Reference) (Object, error)
}

// NewDocument returns an empty document.  The caller needs to set the /Root
// entry of the trailer before the document can be written.
func NewDocument(ver Version) *Document {
	return &Document{
		Version: ver,
		Trailer: Dict{},
		xref:    make(map[uint32]*xRefEntry),
		objects: make(map[uint32]Object),
		objStms: make(map[uint32]*objStm),
		nextNum: 1,
	}
}

// Parse reads a PDF document from memory.  The data must not be modified
// while the Document is in use.
//
// If the file structure is broken, a *MalformedDocumentError is returned.
// Encrypted documents and documents without a usable document catalog
// cause an *UnsupportedStructureError.
func Parse(data []byte) (*Document, error) {
	s := newScanner(data, 0, nil)
	ver, err := s.ReadHeaderVersion()
	if err != nil {
		return nil, err
	}

	xref, trailer, err := readXRef(data)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(ver)
	doc.data = data
	doc.xref = xref
	doc.Trailer = trailer
	for num := range xref {
		if num >= doc.nextNum {
			doc.nextNum = num + 1
		}
	}

	if _, isEncrypted := trailer["Encrypt"]; isEncrypted {
		return nil, &UnsupportedStructureError{What: "encrypted document"}
	}
	if _, ok := trailer["Root"].(Reference); !ok {
		return nil, &UnsupportedStructureError{What: "missing document catalog"}
	}
	root, err := Resolve(doc, trailer["Root"])
	if err != nil {
		return nil, err
	}
	catalog, ok := root.(Dict)
	if !ok {
		return nil, &UnsupportedStructureError{What: "invalid document catalog"}
	}

	// A /Version entry in the catalog overrides the file header.
	if verName, ok := catalog["Version"].(Name); ok {
		if v, err := ParseVersion(string(verName)); err == nil && v > doc.Version {
			doc.Version = v
		}
	}

	return doc, nil
}

// Get returns the object with the given reference.  Objects are read from
// the file on first access.  References to objects which do not exist
// result in a *MalformedDocumentError.
func (d *Document) Get(ref Reference) (Object, error) {
	num := ref.Number()
	if obj, ok := d.objects[num]; ok {
		return obj, nil
	}

	entry := d.xref[num]
	if entry.IsFree() {
		return nil, &MalformedDocumentError{
			Err: fmt.Errorf("dangling reference %s", ref),
		}
	}

	if d.loading.Test(uint(num)) {
		return nil, &MalformedDocumentError{
			Err: fmt.Errorf("object %s depends on itself", ref),
		}
	}
	d.loading.Set(uint(num))
	defer d.loading.Clear(uint(num))

	var obj Object
	var err error
	if entry.InStream != 0 {
		obj, err = d.getFromObjectStream(num, entry)
	} else {
		obj, err = d.getFromFile(num, entry)
	}
	if err != nil {
		return nil, err
	}

	d.objects[num] = obj
	return obj, nil
}

func (d *Document) getFromFile(num uint32, entry *xRefEntry) (Object, error) {
	if entry.Pos >= int64(len(d.data)) {
		return nil, &MalformedDocumentError{
			Pos: entry.Pos,
			Err: fmt.Errorf("object %d: offset beyond end of file", num),
		}
	}
	s := newScanner(d.data, int(entry.Pos), d.getLength)
	ref, obj, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	if ref.Number() != num {
		return nil, &MalformedDocumentError{
			Pos: entry.Pos,
			Err: fmt.Errorf("xref entry for object %d points to %s", num, ref),
		}
	}
	return obj, nil
}

// objStm holds the decoded contents of an object stream.
type objStm struct {
	data    []byte
	offsets map[uint32]int
	idx     []uint32
}

func (d *Document) getFromObjectStream(num uint32, entry *xRefEntry) (Object, error) {
	stm, err := d.loadObjectStream(entry.InStream)
	if err != nil {
		return nil, err
	}

	pos, ok := stm.offsets[num]
	if !ok {
		// Fall back to the index given in the xref stream.
		if entry.Pos < 0 || entry.Pos >= int64(len(stm.idx)) {
			return nil, &MalformedDocumentError{
				Err: fmt.Errorf("object %d not found in object stream %d", num, entry.InStream),
			}
		}
		pos = stm.offsets[stm.idx[entry.Pos]]
	}

	s := newScanner(stm.data, pos, nil)
	return s.ReadObject()
}

func (d *Document) loadObjectStream(num uint32) (*objStm, error) {
	if stm, ok := d.objStms[num]; ok {
		return stm, nil
	}

	obj, err := d.Get(NewReference(num, 0))
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return nil, &MalformedDocumentError{
			Err: fmt.Errorf("object %d is not an object stream", num),
		}
	}
	n, err := GetInteger(d, stream.Dict["N"])
	if err != nil {
		return nil, err
	}
	first, err := GetInteger(d, stream.Dict["First"])
	if err != nil {
		return nil, err
	}
	data, err := stream.Decode(d)
	if err != nil {
		return nil, &MalformedDocumentError{Err: fmt.Errorf("object stream %d: %w", num, err)}
	}
	if n < 0 || first < 0 || int64(first) > int64(len(data)) {
		return nil, &MalformedDocumentError{
			Err: fmt.Errorf("object stream %d: invalid header", num),
		}
	}

	stm := &objStm{
		data:    data[first:],
		offsets: make(map[uint32]int, n),
	}
	s := newScanner(data[:first], 0, nil)
	for range n {
		s.SkipWhiteSpace()
		objNum, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		s.SkipWhiteSpace()
		offs, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if objNum < 0 || objNum > math.MaxUint32 || offs < 0 || int64(offs) >= int64(len(stm.data)) {
			return nil, &MalformedDocumentError{
				Err: fmt.Errorf("object stream %d: invalid header", num),
			}
		}
		stm.offsets[uint32(objNum)] = int(offs)
		stm.idx = append(stm.idx, uint32(objNum))
	}

	d.objStms[num] = stm
	return stm, nil
}

// getLength resolves the /Length entry of a stream dictionary.
func (d *Document) getLength(obj Object) (Integer, error) {
	return GetInteger(d, obj)
}

// Alloc allocates an object number for a new indirect object.
func (d *Document) Alloc() Reference {
	ref := NewReference(d.nextNum, 0)
	d.nextNum++
	return ref
}

// Put stores obj as the indirect object ref, replacing any previous value.
func (d *Document) Put(ref Reference, obj Object) {
	num := ref.Number()
	d.objects[num] = obj
	if num >= d.nextNum {
		d.nextNum = num + 1
	}
}

// Add stores obj as a new indirect object and returns its reference.
func (d *Document) Add(obj Object) Reference {
	ref := d.Alloc()
	d.Put(ref, obj)
	return ref
}

// Catalog returns the document catalog.
func (d *Document) Catalog() (Dict, error) {
	catalog, err := GetDict(d, d.Trailer["Root"])
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, &UnsupportedStructureError{What: "missing document catalog"}
	}
	return catalog, nil
}

// RequireVersion raises the document version to at least v.
func (d *Document) RequireVersion(v Version) {
	if d.Version < v {
		d.Version = v
	}
}

// Version represents a version of PDF standard.
type Version int

// PDF versions supported by this library.
const (
	_ Version = iota
	V1_0
	V1_1
	V1_2
	V1_3
	V1_4
	V1_5
	V1_6
	V1_7
	V2_0
)

// ParseVersion parses a PDF version string.
func ParseVersion(verString string) (Version, error) {
	switch verString {
	case "1.0":
		return V1_0, nil
	case "1.1":
		return V1_1, nil
	case "1.2":
		return V1_2, nil
	case "1.3":
		return V1_3, nil
	case "1.4":
		return V1_4, nil
	case "1.5":
		return V1_5, nil
	case "1.6":
		return V1_6, nil
	case "1.7":
		return V1_7, nil
	case "2.0":
		return V2_0, nil
	}
	return 0, errVersion
}

// ToString returns the string representation of ver, e.g. "1.7".
// If ver does not correspond to a supported PDF version, an error is
// returned.
func (ver Version) ToString() (string, error) {
	if ver >= V1_0 && ver <= V1_7 {
		return "1." + string([]byte{byte(ver - V1_0 + '0')}), nil
	}
	if ver == V2_0 {
		return "2.0", nil
	}
	return "", errVersion
}

func (ver Version) String() string {
	versionString, err := ver.ToString()
	if err != nil {
		versionString = "pdfops.Version(" + strconv.Itoa(int(ver)) + ")"
	}
	return versionString
}

var errVersion = errors.New("unsupported PDF version")
