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

package stamp_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/internal/testdoc"
	"seehuhn.de/go/pdfops/pagetree"
	"seehuhn.de/go/pdfops/stamp"
)

// reload writes doc to a PDF file and reads it back.
func reload(t *testing.T, doc *pdfops.Document) (*pdfops.Document, []*pagetree.Page) {
	t.Helper()
	data, err := pdfops.Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc, err = pdfops.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		t.Fatal(err)
	}
	return doc, pages
}

func pageContents(t *testing.T, doc *pdfops.Document) []string {
	t.Helper()
	doc, pages := reload(t, doc)
	var res []string
	for _, page := range pages {
		body, err := pagetree.ContentStream(doc, page.Dict)
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, string(body))
	}
	return res
}

func makePNG(t *testing.T, width, height int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.NRGBA{R: 255, G: uint8(x), B: uint8(y), A: alpha})
		}
	}
	buf := &bytes.Buffer{}
	err := png.Encode(buf, img)
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWatermark(t *testing.T) {
	doc := testdoc.New("w", 3)
	doc.Version = pdfops.V1_3

	n, err := stamp.Watermark(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("watermarked %d pages, want 3", n)
	}
	if doc.Version != pdfops.V1_4 {
		t.Errorf("version is %s, want 1.4", doc.Version)
	}

	contents := pageContents(t, doc)
	if len(contents) != 3 {
		t.Fatalf("got %d pages", len(contents))
	}
	for i, body := range contents {
		if !strings.Contains(body, testdoc.PageText("w", i+1)) {
			t.Errorf("page %d: original content lost", i+1)
		}
		if n := strings.Count(body, "(PISZKOZAT) Tj"); n != 1 {
			t.Errorf("page %d: found %d watermarks", i+1, n)
		}
		if !strings.HasPrefix(body, "q\n") {
			t.Errorf("page %d: original content not enclosed in q/Q", i+1)
		}
		if !strings.Contains(body, "/F2 84 Tf\n-226.8 0 Td\n") {
			t.Errorf("page %d: unexpected text placement\n%s", i+1, body)
		}
	}

	_, err = stamp.Watermark(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, body := range pageContents(t, doc) {
		if n := strings.Count(body, "(PISZKOZAT) Tj"); n != 2 {
			t.Errorf("page %d: found %d watermarks after second pass", i+1, n)
		}
		if !strings.Contains(body, testdoc.PageText("w", i+1)) {
			t.Errorf("page %d: original content lost", i+1)
		}
	}
}

func TestWatermarkGeometry(t *testing.T) {
	doc, err := pdfops.Parse(testdoc.Assemble(map[int]string{
		1: "<< /Type /Catalog /Pages 2 0 R >>",
		2: "<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		3: "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 100] /Rotate 90 >>",
	}, "/Root 1 0 R"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = stamp.Watermark(doc, &stamp.WatermarkOptions{Text: "AB", FontSize: 10, Opacity: 0.5})
	if err != nil {
		t.Fatal(err)
	}

	doc2, pages := reload(t, doc)
	body, err := pagetree.ContentStream(doc2, pages[0].Dict)
	if err != nil {
		t.Fatal(err)
	}
	s := string(body)
	contents, _ := pdfops.GetArray(doc2, pages[0].Dict["Contents"])
	if len(contents) != 1 {
		t.Errorf("got %d content streams for an empty page", len(contents))
	}
	for _, want := range []string{" 100 50 cm\n", "/F1 10 Tf\n-6 0 Td\n(AB) Tj\n"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in\n%s", want, s)
		}
	}

	gsDict, err := pdfops.GetDict(doc2, pages[0].Resources["ExtGState"])
	if err != nil {
		t.Fatal(err)
	}
	gs, err := pdfops.GetDict(doc2, gsDict["E1"])
	if err != nil {
		t.Fatal(err)
	}
	alpha, _ := pdfops.GetNumber(doc2, gs["ca"])
	if alpha != 0.5 {
		t.Errorf("fill opacity is %g", alpha)
	}
}

func TestOverlayKeepsSharedResources(t *testing.T) {
	doc := testdoc.New("s", 2)
	_, err := stamp.Watermark(doc, nil)
	if err != nil {
		t.Fatal(err)
	}

	catalog, err := doc.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	root, err := pdfops.GetDict(doc, catalog["Pages"])
	if err != nil {
		t.Fatal(err)
	}
	res, _ := pdfops.GetDict(doc, root["Resources"])
	fonts, _ := pdfops.GetDict(doc, res["Font"])
	if len(fonts) != 1 {
		t.Errorf("inherited font dictionary was modified: %v", fonts)
	}
	if _, ok := res["ExtGState"]; ok {
		t.Error("inherited resource dictionary was modified")
	}
}

func TestStaticImage(t *testing.T) {
	doc := testdoc.New("i", 1)
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		t.Fatal(err)
	}

	err = stamp.StaticImage(doc, pages[0], makePNG(t, 20, 10, 128), 36, 40, 100, 100)
	if err != nil {
		t.Fatal(err)
	}

	doc2, pages2 := reload(t, doc)
	body, err := pagetree.ContentStream(doc2, pages2[0].Dict)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "q\n100 0 0 50 36 40 cm\n/X1 Do\nQ\n") {
		t.Errorf("unexpected content\n%s", body)
	}

	xobj, err := pdfops.GetDict(doc2, pages2[0].Resources["XObject"])
	if err != nil {
		t.Fatal(err)
	}
	img, err := pdfops.GetStream(doc2, xobj["X1"])
	if err != nil {
		t.Fatal(err)
	}
	if img.Dict["SMask"] == nil {
		t.Error("missing soft mask")
	}
	pix, err := img.Decode(doc2)
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != 20*10*3 {
		t.Errorf("got %d bytes of pixel data", len(pix))
	}
	if !bytes.Equal(pix[:6], []byte{255, 0, 0, 255, 1, 0}) {
		t.Errorf("wrong pixel data % x", pix[:6])
	}
}

func TestEmbedJPEG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 4))
	buf := &bytes.Buffer{}
	err := jpeg.Encode(buf, img, nil)
	if err != nil {
		t.Fatal(err)
	}

	doc := pdfops.NewDocument(pdfops.V1_7)
	res, err := stamp.EmbedImage(doc, buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 8 || res.Height != 4 {
		t.Errorf("wrong size %dx%d", res.Width, res.Height)
	}
	stm, err := pdfops.GetStream(doc, res.Ref)
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := stm.Raw()
	if !ok || !bytes.Equal(raw, buf.Bytes()) {
		t.Error("JPEG data not embedded verbatim")
	}
	want := pdfops.Dict{
		"Type":             pdfops.Name("XObject"),
		"Subtype":          pdfops.Name("Image"),
		"Width":            pdfops.Integer(8),
		"Height":           pdfops.Integer(4),
		"ColorSpace":       pdfops.Name("DeviceGray"),
		"BitsPerComponent": pdfops.Integer(8),
		"Filter":           pdfops.Name("DCTDecode"),
	}
	if d := cmp.Diff(want, stm.Dict); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestEmbedInvalidImage(t *testing.T) {
	doc := pdfops.NewDocument(pdfops.V1_7)
	_, err := stamp.EmbedImage(doc, []byte("not an image"))
	var invalid *pdfops.InvalidFileContentError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidFileContentError, got %v", err)
	}
}

func TestHeaderFooter(t *testing.T) {
	bundle := fstest.MapFS{
		"img/header.png": {Data: makePNG(t, 50, 20, 255)},
		"img/footer.png": {Data: makePNG(t, 100, 10, 255)},
	}
	dec := &stamp.StaticDecorator{
		Header: &stamp.ImageSource{BundledPath: "img/header.png", Bundled: bundle},
		Footer: &stamp.ImageSource{BundledPath: "img/footer.png", Bundled: bundle},
	}

	doc := testdoc.New("h", 2)
	err := stamp.HeaderFooter(doc, dec, nil)
	if err != nil {
		t.Fatal(err)
	}

	contents := pageContents(t, doc)
	for _, want := range []string{
		"q\n250 0 0 100 36 766 cm\n/X1 Do\nQ\n",
		"q\n523 0 0 52.3 36 41 cm\n/X2 Do\nQ\n",
	} {
		if !strings.Contains(contents[0], want) {
			t.Errorf("missing %q in\n%s", want, contents[0])
		}
	}
	if strings.Contains(contents[1], "Do") {
		t.Error("second page was modified")
	}
}

func TestHeaderFooterMissingImage(t *testing.T) {
	dec := &stamp.StaticDecorator{
		Footer: &stamp.ImageSource{BundledPath: "missing.png", Bundled: fstest.MapFS{}},
	}
	err := stamp.HeaderFooter(testdoc.New("m", 1), dec, nil)
	var unavailable *pdfops.ResourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ResourceUnavailableError, got %v", err)
	}
	if unavailable.Path != "missing.png" {
		t.Errorf("wrong path %q", unavailable.Path)
	}
}

func TestImageSource(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "logo.png")
	err := os.WriteFile(fname, []byte("data"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		src  stamp.ImageSource
		ok   bool
	}{
		{"editable", stamp.ImageSource{Editable: true, EditablePath: fname}, true},
		{"editable missing", stamp.ImageSource{Editable: true, EditablePath: fname + ".x"}, false},
		{"bundled", stamp.ImageSource{BundledPath: "a", Bundled: fstest.MapFS{"a": {Data: []byte("data")}}}, true},
		{"no bundle", stamp.ImageSource{BundledPath: "a"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := c.src.Bytes()
			if c.ok {
				if err != nil || string(data) != "data" {
					t.Errorf("got %q, %v", data, err)
				}
				return
			}
			var unavailable *pdfops.ResourceUnavailableError
			if !errors.As(err, &unavailable) {
				t.Errorf("expected ResourceUnavailableError, got %v", err)
			}
		})
	}
}

func TestFoldingLines(t *testing.T) {
	doc := testdoc.New("f", 2)
	lines := []stamp.FoldingLine{
		{Start: vec.Vec2{X: 0, Y: 421}, End: vec.Vec2{X: 595, Y: 421}},
		{Start: vec.Vec2{X: 297.5, Y: 0}, End: vec.Vec2{X: 297.5, Y: 842}},
	}
	n, err := stamp.FoldingLines(doc, lines)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("changed %d pages, want 2", n)
	}

	want := "Q\nq\n.498 .498 .498 RG\n0 421 m\n595 421 l\n297.5 0 m\n297.5 842 l\nS\nQ\n"
	for i, body := range pageContents(t, doc) {
		if !strings.HasSuffix(body, want) {
			t.Errorf("page %d: unexpected content\n%s", i+1, body)
		}
		if !strings.Contains(body, testdoc.PageText("f", i+1)) {
			t.Errorf("page %d: original content lost", i+1)
		}
	}

	before, _ := pdfops.Serialize(doc)
	n, err = stamp.FoldingLines(doc, nil)
	if err != nil || n != 0 {
		t.Fatalf("no lines: got %d, %v", n, err)
	}
	after, _ := pdfops.Serialize(doc)
	if !bytes.Equal(before, after) {
		t.Error("document changed without folding lines")
	}
}
