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

// Package docinfo reads and updates the document information dictionary
// and the XMP metadata of a PDF document.
package docinfo

import (
	"bytes"
	"encoding/xml"
	"io"
	"time"

	"seehuhn.de/go/xmp"

	"seehuhn.de/go/pdfops"
)

// Info represents a PDF document information dictionary.
//
// All fields are optional.  Dates which are missing or cannot be parsed
// are represented by the zero time.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Creator is the name of the application that created the original
	// document.
	Creator string

	// Producer is the name of the application that converted the
	// document to PDF.
	Producer string

	CreationDate time.Time
	ModDate      time.Time
}

// Read returns the document information dictionary of doc.  If the
// document has no information dictionary, the zero Info is returned.
// Malformed entries are ignored.
func Read(doc *pdfops.Document) (*Info, error) {
	dict, err := pdfops.Optional(pdfops.GetDict(doc, doc.Trailer["Info"]))
	if err != nil {
		return nil, err
	}

	info := &Info{}
	for key, field := range map[pdfops.Name]*string{
		"Title":    &info.Title,
		"Author":   &info.Author,
		"Subject":  &info.Subject,
		"Keywords": &info.Keywords,
		"Creator":  &info.Creator,
		"Producer": &info.Producer,
	} {
		*field, _ = pdfops.GetTextString(doc, dict[key])
	}
	for key, field := range map[pdfops.Name]*time.Time{
		"CreationDate": &info.CreationDate,
		"ModDate":      &info.ModDate,
	} {
		s, _ := pdfops.GetString(doc, dict[key])
		if s == nil {
			continue
		}
		if t, err := s.AsDate(); err == nil {
			*field = t
		}
	}
	return info, nil
}

// Touch records a modification of the document at time now.
//
// The /ModDate entry of the information dictionary is set to now, and
// /CreationDate is added if missing.  If producer is not empty, it is
// stored as /Producer.  If the document has an XMP metadata stream, the
// corresponding XMP properties are updated as well.
func Touch(doc *pdfops.Document, producer string, now time.Time) error {
	info, err := pdfops.Optional(pdfops.GetDict(doc, doc.Trailer["Info"]))
	if err != nil {
		return err
	}
	info = info.Clone()
	if info == nil {
		info = pdfops.Dict{}
	}

	if producer != "" {
		info["Producer"] = pdfops.TextString(producer)
	}
	info["ModDate"] = pdfops.Date(now)
	if _, ok := info["CreationDate"]; !ok {
		info["CreationDate"] = pdfops.Date(now)
	}

	if ref, ok := doc.Trailer["Info"].(pdfops.Reference); ok {
		doc.Put(ref, info)
	} else {
		doc.Trailer["Info"] = doc.Add(info)
	}

	return updateMetadata(doc, producer, now)
}

// pdfNamespace is the XMP namespace for PDF properties.
type pdfNamespace struct {
	_        xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_        xmp.Prefix    `xmp:"pdf"`
	Producer xmp.AgentName
}

// updateMetadata updates the XMP metadata stream referenced from the
// document catalog.  Packets which cannot be parsed are left unchanged.
func updateMetadata(doc *pdfops.Document, producer string, now time.Time) error {
	catalog, err := doc.Catalog()
	if err != nil {
		return err
	}
	ref, ok := catalog["Metadata"].(pdfops.Reference)
	if !ok {
		return nil
	}
	stm, err := pdfops.Optional(pdfops.GetStream(doc, ref))
	if err != nil || stm == nil {
		return err
	}
	body, err := stm.Decode(doc)
	if err != nil || !hasRDF(body) {
		return nil
	}
	packet, err := xmp.Read(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	packet.Set(&xmp.Basic{ModifyDate: xmp.NewDate(now)})
	if producer != "" {
		packet.Set(&pdfNamespace{Producer: xmp.NewAgentName(producer)})
	}

	buf := &bytes.Buffer{}
	err = packet.Write(buf, nil)
	if err != nil {
		return err
	}

	doc.Put(ref, pdfops.NewStream(stm.Dict.Clone(), buf.Bytes()))
	return nil
}

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// hasRDF reports whether body is well-formed XML containing an rdf:RDF
// element.  Note that xmp.Read ignores everything outside rdf:RDF.
func hasRDF(body []byte) bool {
	found := false
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return found
		} else if err != nil {
			return false
		}
		if start, ok := t.(xml.StartElement); ok {
			if start.Name.Space == rdfNS && start.Name.Local == "RDF" {
				found = true
			}
		}
	}
}
