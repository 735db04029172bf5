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

package attach_test

import (
	"bytes"
	"crypto/md5"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/attach"
	"seehuhn.de/go/pdfops/internal/testdoc"
	"seehuhn.de/go/pdfops/nametree"
)

func roundTrip(t *testing.T, doc *pdfops.Document) *pdfops.Document {
	t.Helper()
	data, err := pdfops.Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc2, err := pdfops.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	return doc2
}

// withFiles returns a one-page document whose /EmbeddedFiles name tree
// maps each key to a file specification with the given /EF dictionary.
func withFiles(files map[string]pdfops.Dict) *pdfops.Document {
	return withFilesIn(testdoc.New("x", 1), files)
}

func TestEmbedExtract(t *testing.T) {
	doc := testdoc.New("x", 2)
	files := []attach.Attachment{
		{Data: []byte("hello"), Filename: "hello.txt", Description: "greeting"},
		{Data: []byte("%PDF-1.4 ..."), Filename: "inner.pdf"},
		{Data: []byte{}, Filename: "empty.txt"},
	}
	err := attach.Embed(doc, files)
	if err != nil {
		t.Fatal(err)
	}
	doc = roundTrip(t, doc)

	got, err := attach.Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]byte{
		"hello.txt": []byte("hello"),
		"inner.pdf": []byte("%PDF-1.4 ..."),
		"empty.txt": nil,
	}
	if d := cmp.Diff(want, got, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("attachments mismatch (-want +got):\n%s", d)
	}

	pages, err := pdfops.GetInteger(doc, mustPages(t, doc)["Count"])
	if err != nil || pages != 2 {
		t.Errorf("page count changed: %d, %v", pages, err)
	}
}

func mustPages(t *testing.T, doc *pdfops.Document) pdfops.Dict {
	t.Helper()
	catalog, err := doc.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	pages, err := pdfops.GetDict(doc, catalog["Pages"])
	if err != nil {
		t.Fatal(err)
	}
	return pages
}

func TestEmbedStreamDict(t *testing.T) {
	doc := testdoc.New("x", 1)
	data := []byte(`{"a": 1}`)
	err := attach.Embed(doc, []attach.Attachment{
		{Data: data, Filename: "Café.json", Description: "Übersicht"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version < pdfops.V1_7 {
		t.Errorf("version %s too old for /UF", doc.Version)
	}
	doc = roundTrip(t, doc)

	list, err := attach.List(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := []*attach.Info{{
		Name:        "Café.json",
		Filename:    "Café.json",
		Description: "Übersicht",
		MimeType:    "application/json",
		Size:        int64(len(data)),
	}}
	if d := cmp.Diff(want, list); d != "" {
		t.Errorf("List mismatch (-want +got):\n%s", d)
	}

	catalog, _ := doc.Catalog()
	names, _ := pdfops.GetDict(doc, catalog["Names"])
	specObj, err := nametree.Lookup(doc, names["EmbeddedFiles"], string(pdfops.TextString("Café.json")))
	if err != nil {
		t.Fatal(err)
	}
	spec, _ := pdfops.GetDict(doc, specObj)
	ef, _ := pdfops.GetDict(doc, spec["EF"])
	stm, err := pdfops.GetStream(doc, ef["F"])
	if err != nil || stm == nil {
		t.Fatalf("missing embedded file stream: %v", err)
	}
	if tp, _ := pdfops.GetName(doc, stm.Dict["Type"]); tp != "EmbeddedFile" {
		t.Errorf("wrong stream type %q", tp)
	}
	params, _ := pdfops.GetDict(doc, stm.Dict["Params"])
	sum, _ := pdfops.GetString(doc, params["CheckSum"])
	wantSum := md5.Sum(data)
	if !bytes.Equal(sum, wantSum[:]) {
		t.Errorf("wrong checksum %x", sum)
	}
}

func TestEmbedDuplicateNames(t *testing.T) {
	doc := testdoc.New("x", 1)
	err := attach.Embed(doc, []attach.Attachment{
		{Data: []byte("1"), Filename: "a.txt"},
		{Data: []byte("2"), Filename: "a.txt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = attach.Embed(doc, []attach.Attachment{
		{Data: []byte("3"), Filename: "a.txt"},
		{Data: []byte("4"), Filename: "README"},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc = roundTrip(t, doc)

	got, err := attach.Extract(doc, "txt", "")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]byte{
		"a.txt":     []byte("1"),
		"a (1).txt": []byte("2"),
		"a (2).txt": []byte("3"),
		"README":    []byte("4"),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("attachments mismatch (-want +got):\n%s", d)
	}
}

func TestExtensionFilter(t *testing.T) {
	doc := testdoc.New("x", 1)
	err := attach.Embed(doc, []attach.Attachment{
		{Data: []byte("a"), Filename: "a.pdf"},
		{Data: []byte("b"), Filename: "b.txt"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		allowed []string
		want    []string
	}{
		{nil, []string{"a.pdf", "b.txt"}},
		{[]string{"pdf"}, nil},
		{[]string{"pdf", "txt"}, []string{"a.pdf", "b.txt"}},
		{[]string{"PDF", "TXT"}, nil},
	}
	for _, c := range cases {
		got, err := attach.Extract(doc, c.allowed...)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil {
			t.Errorf("%q: nil map", c.allowed)
		}
		var names []string
		for _, name := range []string{"a.pdf", "b.txt"} {
			if _, ok := got[name]; ok {
				names = append(names, name)
			}
		}
		if d := cmp.Diff(c.want, names); d != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", c.allowed, d)
		}
	}
}

func TestUFPrecedence(t *testing.T) {
	doc := withFiles(nil)
	fStream := doc.Add(pdfops.NewStream(pdfops.Dict{"Type": pdfops.Name("EmbeddedFile")}, []byte("from F")))
	ufStream := doc.Add(pdfops.NewStream(pdfops.Dict{"Type": pdfops.Name("EmbeddedFile")}, []byte("from UF")))
	doc = withFilesIn(doc, map[string]pdfops.Dict{
		"both.txt":   {"F": fStream, "UF": ufStream},
		"only-f.txt": {"F": fStream},
		"none.txt":   {},
	})
	doc = roundTrip(t, doc)

	got, err := attach.Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]byte{
		"both.txt":   []byte("from UF"),
		"only-f.txt": []byte("from F"),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("attachments mismatch (-want +got):\n%s", d)
	}
}

// withFilesIn replaces the /EmbeddedFiles name tree of doc.
func withFilesIn(doc *pdfops.Document, files map[string]pdfops.Dict) *pdfops.Document {
	var entries []nametree.Entry
	for name, ef := range files {
		entries = append(entries, nametree.Entry{
			Key: pdfops.TextString(name),
			Value: doc.Add(pdfops.Dict{
				"Type": pdfops.Name("Filespec"),
				"F":    pdfops.TextString(name),
				"EF":   ef,
			}),
		})
	}
	catalog, _ := doc.Catalog()
	catalog["Names"] = pdfops.Dict{"EmbeddedFiles": nametree.Write(doc, entries)}
	return doc
}

func TestExtractMissing(t *testing.T) {
	noNames := testdoc.New("x", 1)

	noTree := testdoc.New("x", 1)
	catalog, _ := noTree.Catalog()
	catalog["Names"] = pdfops.Dict{}

	for name, doc := range map[string]*pdfops.Document{
		"no /Names":         noNames,
		"no /EmbeddedFiles": noTree,
	} {
		_, err := attach.Extract(doc)
		var malformed *pdfops.MalformedDocumentError
		if !errors.As(err, &malformed) {
			t.Errorf("%s: expected MalformedDocumentError, got %v", name, err)
		}

		list, err := attach.List(doc)
		if err != nil || len(list) != 0 {
			t.Errorf("%s: List gave %v, %v", name, list, err)
		}
	}
}

func TestExtractEmptyTree(t *testing.T) {
	cases := map[string]pdfops.Dict{
		"empty leaf": {"Names": pdfops.Array{}},
		"no kids":    {"Kids": pdfops.Array{}},
		"empty kid":  {"Kids": pdfops.Array{pdfops.Dict{"Names": pdfops.Array{}}}},
	}
	for name, tree := range cases {
		t.Run(name, func(t *testing.T) {
			doc := testdoc.New("x", 1)
			catalog, _ := doc.Catalog()
			catalog["Names"] = pdfops.Dict{"EmbeddedFiles": tree}
			doc = roundTrip(t, doc)

			got, err := attach.Extract(doc)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("got %v, want an empty map", got)
			}

			got, err = attach.Extract(doc, "pdf")
			if err != nil || got == nil || len(got) != 0 {
				t.Errorf("filtered: got %v, %v", got, err)
			}

			list, err := attach.List(doc)
			if err != nil || len(list) != 0 {
				t.Errorf("List gave %v, %v", list, err)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"a.pdf":          "pdf",
		"archive.tar.gz": "gz",
		"README":         "",
		"dir.d/file":     "",
		".hidden":        "hidden",
	}
	for name, want := range cases {
		if got := attach.Extension(name); got != want {
			t.Errorf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}
