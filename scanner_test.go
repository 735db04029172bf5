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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadObject(t *testing.T) {
	cases := []struct {
		in   string
		want Object
	}{
		{"null", nil},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"42", Integer(42)},
		{"-17", Integer(-17)},
		{"3.25", Real(3.25)},
		{"-.5", Real(-0.5)},
		{"/Name", Name("Name")},
		{"/A#20B", Name("A B")},
		{"(hello)", String("hello")},
		{"(a(b)c)", String("a(b)c")},
		{`(a\)b)`, String("a)b")},
		{`(\101\102)`, String("AB")},
		{`(line\nbreak)`, String("line\nbreak")},
		{"(a\\\nb)", String("ab")},
		{"<48656C6C6F>", String("Hello")},
		{"<4 1>", String("A")},
		{"<414>", String("A@")},
		{"[1 2 3]", Array{Integer(1), Integer(2), Integer(3)}},
		{"[1 0 R 2]", Array{NewReference(1, 0), Integer(2)}},
		{"[1 2 R]", Array{NewReference(1, 2)}},
		{"12 0 R", NewReference(12, 0)},
		{"[]", Array{}},
		{"<< /A 1 /B [/x] >>", Dict{"A": Integer(1), "B": Array{Name("x")}}},
		{"<</A 1 0 R/B null>>", Dict{"A": NewReference(1, 0)}},
		{"<< /A % comment\n 7 >>", Dict{"A": Integer(7)}},
	}
	for _, c := range cases {
		s := newScanner([]byte(c.in), 0, nil)
		got, err := s.ReadObject()
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", c.in, d)
		}
	}
}

func TestReadObjectErrors(t *testing.T) {
	cases := []string{
		"",
		"(unterminated",
		"<4x>",
		"[1 2",
		"<< /A 1",
		")",
	}
	for _, in := range cases {
		s := newScanner([]byte(in), 0, nil)
		_, err := s.ReadObject()
		if _, ok := err.(*MalformedDocumentError); !ok {
			t.Errorf("%q: expected MalformedDocumentError, got %v", in, err)
		}
	}
}

func TestReadStream(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"exact length", "<< /Length 5 >>\nstream\nhello\nendstream", "hello"},
		{"CRLF", "<< /Length 5 >>\nstream\r\nhello\r\nendstream", "hello"},
		{"wrong length", "<< /Length 3 >>\nstream\nhello\nendstream", "hello"},
		{"missing length", "<< >>\nstream\nhello world\nendstream", "hello world"},
		{"indirect length", "<< /Length 9 0 R >>\nstream\nabc\nendstream", "abc"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newScanner([]byte(c.in), 0, nil)
			obj, err := s.ReadObject()
			if err != nil {
				t.Fatal(err)
			}
			stm, ok := obj.(*Stream)
			if !ok {
				t.Fatalf("expected *Stream, got %T", obj)
			}
			raw, ok := stm.Raw()
			if !ok {
				t.Fatal("stream has no raw data")
			}
			if string(raw) != c.want {
				t.Errorf("got %q, want %q", raw, c.want)
			}
		})
	}
}

func TestReadIndirectObject(t *testing.T) {
	s := newScanner([]byte("  7 0 obj\n<< /Type /Test >>\nendobj\n"), 0, nil)
	ref, obj, err := s.ReadIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	if ref != NewReference(7, 0) {
		t.Errorf("wrong reference %s", ref)
	}
	if d := cmp.Diff(Dict{"Type": Name("Test")}, obj); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestObjectRoundTrip(t *testing.T) {
	objects := []Object{
		Integer(-3),
		Real(1.5),
		Real(2),
		Bool(true),
		Name("with space#"),
		String("balanced (parens)"),
		String("unbalanced ) paren\\"),
		String{0, 1, 2, 3, 255},
		Array{Integer(1), nil, NewReference(5, 1)},
		Dict{"Z": Integer(1), "A": Array{Name("x")}},
	}
	for _, obj := range objects {
		buf := &bytes.Buffer{}
		err := obj.PDF(buf)
		if err != nil {
			t.Fatal(err)
		}
		s := newScanner(buf.Bytes(), 0, nil)
		got, err := s.ReadObject()
		if err != nil {
			t.Fatalf("%q: %v", buf.String(), err)
		}
		if d := cmp.Diff(obj, got); d != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", buf.String(), d)
		}
	}
}

func TestTextString(t *testing.T) {
	for _, s := range []string{"", "ASCII", "Grüße", "Árvíztűrő tükörfúrógép", "日本語"} {
		enc := TextString(s)
		if got := enc.AsTextString(); got != s {
			t.Errorf("%q: got %q", s, got)
		}
	}

	if got := String("\x80 \xa0").AsTextString(); got != "• €" {
		t.Errorf("PDFDocEncoding: got %q", got)
	}
}
