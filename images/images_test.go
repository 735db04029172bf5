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

package images_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/images"
	"seehuhn.de/go/pdfops/internal/testdoc"
	"seehuhn.de/go/pdfops/pagetree"
)

// newDoc creates a one-page document.  The function fill is called to
// create the /XObject resources of the page; if fill returns nil, the page
// has no /XObject resources.
func newDoc(t *testing.T, fill func(doc *pdfops.Document) pdfops.Dict) *pdfops.Document {
	t.Helper()
	doc := pdfops.NewDocument(pdfops.V1_7)
	page := pdfops.Dict{"Type": pdfops.Name("Page")}
	if xObjects := fill(doc); xObjects != nil {
		page["Resources"] = pdfops.Dict{"XObject": xObjects}
	}
	pageRef := doc.Add(page)
	root, err := pagetree.Build(doc, []pdfops.Reference{pageRef}, pdfops.Dict{"MediaBox": testdoc.A4})
	if err != nil {
		t.Fatal(err)
	}
	doc.Trailer["Root"] = doc.Add(pdfops.Dict{
		"Type":  pdfops.Name("Catalog"),
		"Pages": root,
	})

	data, err := pdfops.Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc, err = pdfops.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func imageDict(width, height, bpc int, cs pdfops.Object) pdfops.Dict {
	dict := pdfops.Dict{
		"Type":             pdfops.Name("XObject"),
		"Subtype":          pdfops.Name("Image"),
		"Width":            pdfops.Integer(width),
		"Height":           pdfops.Integer(height),
		"BitsPerComponent": pdfops.Integer(bpc),
	}
	if cs != nil {
		dict["ColorSpace"] = cs
	}
	return dict
}

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(4 * i)
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNoXObjects(t *testing.T) {
	docs := map[string]*pdfops.Document{
		"no resources": newDoc(t, func(*pdfops.Document) pdfops.Dict { return nil }),
	}
	var err error
	docs["font resources only"], err = pdfops.Parse(testdoc.PDF("x", 1))
	if err != nil {
		t.Fatal(err)
	}

	for name, doc := range docs {
		_, err := images.ExtractXObjectImages(doc, 1)
		var barcodeErr *pdfops.BarcodeExtractionFailedError
		if !errors.As(err, &barcodeErr) {
			t.Errorf("%s: expected BarcodeExtractionFailedError, got %v", name, err)
		} else if barcodeErr.Page != 1 {
			t.Errorf("%s: wrong page %d", name, barcodeErr.Page)
		}
	}
}

func TestPageNotFound(t *testing.T) {
	doc := newDoc(t, func(*pdfops.Document) pdfops.Dict { return pdfops.Dict{} })
	for _, pageNo := range []int{0, 2} {
		_, err := images.ExtractXObjectImages(doc, pageNo)
		var notFound *pdfops.PageNotFoundError
		if !errors.As(err, &notFound) || notFound.Page != pageNo {
			t.Errorf("page %d: expected PageNotFoundError, got %v", pageNo, err)
		}
	}

	imgs, err := images.ExtractXObjectImages(doc, 1)
	if err != nil || len(imgs) != 0 {
		t.Errorf("empty /XObject dictionary: got %d images, %v", len(imgs), err)
	}
}

func TestCodecPassThrough(t *testing.T) {
	jpegData := makeJPEG(t)
	hexData := []byte(hex.EncodeToString(jpegData) + ">")
	jbig2Data := []byte{0x97, 0x4a, 0x42, 0x32, 0x0d, 0x0a, 0x1a, 0x0a}

	doc := newDoc(t, func(doc *pdfops.Document) pdfops.Dict {
		plain := imageDict(8, 8, 8, pdfops.Name("DeviceGray"))
		plain["Filter"] = pdfops.Name("DCTDecode")

		chained := imageDict(8, 8, 8, pdfops.Name("DeviceGray"))
		chained["Filter"] = pdfops.Array{pdfops.Name("ASCIIHexDecode"), pdfops.Name("DCTDecode")}

		jbig2 := imageDict(8, 8, 1, pdfops.Name("DeviceGray"))
		jbig2["Filter"] = pdfops.Name("JBIG2Decode")

		return pdfops.Dict{
			"Im1": doc.Add(pdfops.NewEncodedStream(plain, jpegData)),
			"Im2": doc.Add(pdfops.NewEncodedStream(chained, hexData)),
			"Im3": doc.Add(pdfops.NewEncodedStream(jbig2, jbig2Data)),
		}
	})

	imgs, err := images.PageImages(doc, 1)
	if err != nil {
		t.Fatal(err)
	}
	var formats []string
	for _, img := range imgs {
		formats = append(formats, img.Format())
	}
	if d := cmp.Diff([]string{"jpeg", "jpeg", "jbig2"}, formats); d != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", d)
	}

	got, err := images.ExtractXObjectImages(doc, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{jpegData, jpegData, jbig2Data}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("image data mismatch (-want +got):\n%s", d)
	}
}

func TestPNGConversion(t *testing.T) {
	black := color.RGBA{0, 0, 0, 255}
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	cases := []struct {
		name   string
		dict   pdfops.Dict
		pixels []byte
		want   []color.RGBA
	}{
		{
			name:   "gray",
			dict:   imageDict(3, 1, 8, pdfops.Name("DeviceGray")),
			pixels: []byte{0, 128, 255},
			want:   []color.RGBA{black, {128, 128, 128, 255}, white},
		},
		{
			name:   "gray 2 bit",
			dict:   imageDict(4, 1, 2, pdfops.Name("DeviceGray")),
			pixels: []byte{0b00011011},
			want:   []color.RGBA{black, {85, 85, 85, 255}, {170, 170, 170, 255}, white},
		},
		{
			name:   "gray 16 bit",
			dict:   imageDict(2, 1, 16, pdfops.Name("CalGray")),
			pixels: []byte{0xFF, 0xFF, 0x00, 0x00},
			want:   []color.RGBA{white, black},
		},
		{
			name: "inverted bitmap",
			dict: func() pdfops.Dict {
				d := imageDict(3, 2, 1, pdfops.Name("DeviceGray"))
				d["Decode"] = pdfops.Array{pdfops.Integer(1), pdfops.Integer(0)}
				return d
			}(),
			pixels: []byte{0b10100000, 0b01000000},
			want:   []color.RGBA{black, white, black, white, black, white},
		},
		{
			name:   "rgb",
			dict:   imageDict(2, 1, 8, pdfops.Name("DeviceRGB")),
			pixels: []byte{255, 0, 0, 0, 255, 0},
			want:   []color.RGBA{red, green},
		},
		{
			name:   "cmyk",
			dict:   imageDict(2, 1, 8, pdfops.Name("DeviceCMYK")),
			pixels: []byte{0, 0, 0, 0, 0, 0, 0, 255},
			want:   []color.RGBA{white, black},
		},
		{
			name: "indexed",
			dict: imageDict(3, 1, 8, pdfops.Array{
				pdfops.Name("Indexed"),
				pdfops.Name("DeviceRGB"),
				pdfops.Integer(1),
				pdfops.String{0xFF, 0, 0, 0, 0, 0xFF},
			}),
			pixels: []byte{1, 0, 1},
			want:   []color.RGBA{blue, red, blue},
		},
		{
			name: "stencil mask",
			dict: pdfops.Dict{
				"Subtype":   pdfops.Name("Image"),
				"Width":     pdfops.Integer(2),
				"Height":    pdfops.Integer(1),
				"ImageMask": pdfops.Bool(true),
			},
			pixels: []byte{0b01000000},
			want:   []color.RGBA{black, white},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := newDoc(t, func(doc *pdfops.Document) pdfops.Dict {
				return pdfops.Dict{"Im1": doc.Add(pdfops.NewStream(c.dict, c.pixels))}
			})
			got, err := images.ExtractXObjectImages(doc, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d images", len(got))
			}
			img, err := png.Decode(bytes.NewReader(got[0]))
			if err != nil {
				t.Fatal(err)
			}
			b := img.Bounds()
			var colors []color.RGBA
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					colors = append(colors, color.RGBAModel.Convert(img.At(x, y)).(color.RGBA))
				}
			}
			if d := cmp.Diff(c.want, colors); d != "" {
				t.Errorf("pixels mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestICCBased(t *testing.T) {
	doc := newDoc(t, func(doc *pdfops.Document) pdfops.Dict {
		profile := doc.Add(pdfops.NewStream(pdfops.Dict{"N": pdfops.Integer(3)}, []byte("not a real profile")))
		cs := pdfops.Array{pdfops.Name("ICCBased"), profile}
		return pdfops.Dict{
			"Im1": doc.Add(pdfops.NewStream(imageDict(1, 1, 8, cs), []byte{0, 0, 255})),
		}
	})
	got, err := images.ExtractXObjectImages(doc, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d images", len(got))
	}
	img, err := png.Decode(bytes.NewReader(got[0]))
	if err != nil {
		t.Fatal(err)
	}
	if c := color.RGBAModel.Convert(img.At(0, 0)); c != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("wrong color %v", c)
	}
}

func TestSkipUnsupported(t *testing.T) {
	doc := newDoc(t, func(doc *pdfops.Document) pdfops.Dict {
		lab := imageDict(1, 1, 8, pdfops.Array{pdfops.Name("Lab"), pdfops.Dict{}})

		doubleCodec := imageDict(1, 1, 8, pdfops.Name("DeviceGray"))
		doubleCodec["Filter"] = pdfops.Array{pdfops.Name("DCTDecode"), pdfops.Name("FlateDecode")}

		form := pdfops.Dict{
			"Subtype": pdfops.Name("Form"),
			"BBox":    pdfops.Array{pdfops.Integer(0), pdfops.Integer(0), pdfops.Integer(1), pdfops.Integer(1)},
		}

		noSize := imageDict(0, 1, 8, pdfops.Name("DeviceGray"))

		return pdfops.Dict{
			"A": doc.Add(pdfops.NewStream(lab, []byte{0, 0, 0})),
			"B": doc.Add(pdfops.NewEncodedStream(doubleCodec, []byte("xx"))),
			"C": doc.Add(pdfops.NewStream(form, []byte("0 0 m 1 1 l S"))),
			"D": doc.Add(pdfops.NewStream(noSize, nil)),
			"E": doc.Add(pdfops.NewStream(imageDict(1, 1, 8, pdfops.Name("DeviceGray")), []byte{7})),
		}
	})

	imgs, err := images.PageImages(doc, 1)
	if err != nil {
		t.Fatal(err)
	}
	var names []pdfops.Name
	for _, img := range imgs {
		names = append(names, img.Name)
	}
	if d := cmp.Diff([]pdfops.Name{"A", "B", "E"}, names); d != "" {
		t.Errorf("image names mismatch (-want +got):\n%s", d)
	}

	got, err := images.ExtractXObjectImages(doc, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d images, want 1", len(got))
	}
}

func TestCorruptImage(t *testing.T) {
	doc := newDoc(t, func(doc *pdfops.Document) pdfops.Dict {
		return pdfops.Dict{
			"Im1": doc.Add(pdfops.NewStream(imageDict(4, 4, 8, pdfops.Name("DeviceGray")), []byte{1, 2, 3})),
		}
	})
	_, err := images.ExtractXObjectImages(doc, 1)
	var invalid *pdfops.InvalidFileContentError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidFileContentError, got %v", err)
	}
}
