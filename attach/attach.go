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

// Package attach embeds files into PDF documents and extracts them again.
//
// Embedded files are stored in the /EmbeddedFiles name tree of the
// document's /Names dictionary.  Each entry of the tree maps a name to a
// file specification dictionary, whose /EF entry points to an embedded
// file stream.
package attach

import (
	"crypto/md5"
	"errors"
	"fmt"
	"mime"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/nametree"
)

// An Attachment is a file to be embedded into a document.
type Attachment struct {
	Data        []byte
	Filename    string
	Description string
}

// Info describes a file embedded in a document.
type Info struct {
	// Name is the key of the file in the /EmbeddedFiles name tree.
	Name string

	// Filename is the file name from the file specification.  /UF is used
	// if present, otherwise /F.
	Filename string

	Description string

	// MimeType is the value of the /Subtype entry of the embedded file
	// stream, or the empty string if the type is not known.
	MimeType string

	// Size is the uncompressed size of the file in bytes, as recorded in
	// the /Params dictionary.  This is -1 if the size is not recorded.
	Size int64
}

var (
	errNoNames    = errors.New("document has no /Names dictionary")
	errNoEmbedded = errors.New("document has no /EmbeddedFiles name tree")
)

// Embed adds the given files to the document.
//
// Existing embedded files are kept.  If a name is already in use, a
// counter is inserted before the file name extension to make the name
// unique.  The document version is raised to PDF 1.7 if needed.
func Embed(doc *pdfops.Document, files []Attachment) error {
	if len(files) == 0 {
		return nil
	}

	catalog, err := doc.Catalog()
	if err != nil {
		return err
	}
	names, err := pdfops.GetDict(doc, catalog["Names"])
	if err != nil {
		return err
	}
	names = names.Clone()
	if names == nil {
		names = pdfops.Dict{}
	}

	entries, err := nametree.Read(doc, names["EmbeddedFiles"])
	if err != nil {
		return err
	}
	used := make(map[string]bool, len(entries)+len(files))
	for _, e := range entries {
		used[e.Key.AsTextString()] = true
	}

	for _, file := range files {
		name := uniqueName(file.Filename, used)
		used[name] = true

		spec := fileSpec(doc, file)
		entries = append(entries, nametree.Entry{
			Key:   pdfops.TextString(name),
			Value: doc.Add(spec),
		})
	}

	names["EmbeddedFiles"] = nametree.Write(doc, entries)
	catalog = catalog.Clone()
	catalog["Names"] = names
	if ref, ok := doc.Trailer["Root"].(pdfops.Reference); ok {
		doc.Put(ref, catalog)
	} else {
		doc.Trailer["Root"] = doc.Add(catalog)
	}

	// /UF requires PDF 1.7
	doc.RequireVersion(pdfops.V1_7)
	return nil
}

// fileSpec stores the embedded file stream and returns the file
// specification dictionary for file.
func fileSpec(doc *pdfops.Document, file Attachment) pdfops.Dict {
	sum := md5.Sum(file.Data)
	streamDict := pdfops.Dict{
		"Type": pdfops.Name("EmbeddedFile"),
		"Params": pdfops.Dict{
			"Size":     pdfops.Integer(len(file.Data)),
			"CheckSum": pdfops.String(sum[:]),
		},
	}
	if tp := mimeType(file.Filename); tp != "" {
		streamDict["Subtype"] = pdfops.Name(tp)
	}
	stream := doc.Add(pdfops.NewStream(streamDict, file.Data))

	spec := pdfops.Dict{
		"Type": pdfops.Name("Filespec"),
		"F":    pdfops.TextString(file.Filename),
		"UF":   pdfops.TextString(norm.NFC.String(file.Filename)),
		"EF": pdfops.Dict{
			"F":  stream,
			"UF": stream,
		},
	}
	if file.Description != "" {
		spec["Desc"] = pdfops.TextString(file.Description)
	}
	return spec
}

func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if !used[candidate] {
			return candidate
		}
	}
}

func mimeType(filename string) string {
	tp := mime.TypeByExtension(path.Ext(filename))
	if tp == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(tp)
	if err != nil {
		return ""
	}
	return mediaType
}

// Extension returns the file name extension of name, without the leading
// dot.  The result is empty if name has no extension.
func Extension(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}

// Extract returns the contents of all files embedded in the document,
// indexed by their name in the /EmbeddedFiles name tree.
//
// If allowed is non-empty, every embedded file name must have one of the
// given extensions.  If any file has a different extension, an empty map
// is returned.  Extensions are given without the leading dot and are
// compared case-sensitively.
//
// Entries without an embedded file stream are skipped.  If the document
// has no /EmbeddedFiles name tree, a *pdfops.MalformedDocumentError is
// returned.  An empty name tree gives an empty map.
func Extract(doc *pdfops.Document, allowed ...string) (map[string][]byte, error) {
	entries, err := embeddedFiles(doc)
	if err != nil {
		return nil, err
	}

	if len(allowed) > 0 {
		for _, e := range entries {
			if !slices.Contains(allowed, Extension(e.Key.AsTextString())) {
				return map[string][]byte{}, nil
			}
		}
	}

	res := make(map[string][]byte, len(entries))
	for _, e := range entries {
		name := e.Key.AsTextString()
		stream, err := fileStream(doc, e.Value)
		if err != nil {
			return nil, fmt.Errorf("embedded file %q: %w", name, err)
		} else if stream == nil {
			continue
		}
		data, err := stream.Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("embedded file %q: %w", name, err)
		}
		res[name] = data
	}
	return res, nil
}

// List describes all files embedded in the document, in name tree order.
// In contrast to Extract, a document without embedded files gives an
// empty list.
func List(doc *pdfops.Document) ([]*Info, error) {
	entries, err := embeddedFiles(doc)
	if isMissing(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var res []*Info
	for _, e := range entries {
		spec, err := pdfops.GetDict(doc, e.Value)
		if err != nil {
			return nil, err
		}
		info := &Info{
			Name: e.Key.AsTextString(),
			Size: -1,
		}
		info.Filename, _ = pdfops.GetTextString(doc, spec["F"])
		if uf, _ := pdfops.GetTextString(doc, spec["UF"]); uf != "" {
			info.Filename = uf
		}
		info.Description, _ = pdfops.GetTextString(doc, spec["Desc"])

		stream, err := pdfops.Optional(fileStream(doc, spec))
		if err != nil {
			return nil, err
		}
		if stream != nil {
			tp, _ := pdfops.GetName(doc, stream.Dict["Subtype"])
			info.MimeType = string(tp)
			params, _ := pdfops.GetDict(doc, stream.Dict["Params"])
			if size, err := pdfops.GetInteger(doc, params["Size"]); err == nil {
				info.Size = int64(size)
			}
		}
		res = append(res, info)
	}
	return res, nil
}

func isMissing(err error) bool {
	return errors.Is(err, errNoNames) || errors.Is(err, errNoEmbedded)
}

// embeddedFiles reads the entries of the /EmbeddedFiles name tree.
func embeddedFiles(doc *pdfops.Document) ([]nametree.Entry, error) {
	catalog, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	names, err := pdfops.GetDict(doc, catalog["Names"])
	if err != nil {
		return nil, err
	} else if names == nil {
		return nil, &pdfops.MalformedDocumentError{Err: errNoNames}
	}
	root, ok := names["EmbeddedFiles"]
	if !ok || root == nil {
		return nil, &pdfops.MalformedDocumentError{Err: errNoEmbedded}
	}
	return nametree.Read(doc, root)
}

// fileStream returns the embedded file stream of a file specification.
// The /UF entry of the /EF dictionary takes precedence over /F.
func fileStream(r pdfops.Getter, specObj pdfops.Object) (*pdfops.Stream, error) {
	spec, err := pdfops.GetDict(r, specObj)
	if err != nil {
		return nil, err
	}
	ef, err := pdfops.GetDict(r, spec["EF"])
	if err != nil {
		return nil, err
	}
	if uf, ok := ef["UF"]; ok {
		return pdfops.GetStream(r, uf)
	}
	return pdfops.GetStream(r, ef["F"])
}
