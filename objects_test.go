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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in  Object
		out string
	}{
		{nil, "null"},
		{Bool(true), "true"},
		{Integer(-7), "-7"},
		{String("a"), "(a)"},
		{String("a (nested) b"), "(a (nested) b)"},
		{String("unbalanced ("), `(unbalanced \()`},
		{String("back\\slash"), `(back\\slash)`},
		{String(""), "()"},
		{String("\000\001\002"), "<000102>"},
		{Name("Type"), "/Type"},
		{Name("A B#C"), "/A#20B#23C"},
		{Name("application/pdf"), "/application#2fpdf"},
		{Array{Integer(1), nil, Name("x")}, "[1 null /x]"},
		{NewReference(12, 3), "12 3 R"},
	}
	for _, c := range cases {
		out := Format(c.in)
		if out != c.out {
			t.Errorf("Format(%#v): got %q, want %q", c.in, out, c.out)
		}
	}
}

func TestReference(t *testing.T) {
	ref := NewReference(1<<31+5, 65535)
	if ref.Number() != 1<<31+5 || ref.Generation() != 65535 {
		t.Errorf("got %d %d", ref.Number(), ref.Generation())
	}
}

func TestDictClone(t *testing.T) {
	var empty Dict
	if empty.Clone() != nil {
		t.Error("clone of nil dict is not nil")
	}

	orig := Dict{"A": Integer(1), "B": Array{Integer(2)}}
	cp := orig.Clone()
	cp["A"] = Integer(10)
	delete(cp, "B")
	want := Dict{"A": Integer(1), "B": Array{Integer(2)}}
	if d := cmp.Diff(want, orig); d != "" {
		t.Errorf("original modified (-want +got):\n%s", d)
	}
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	cases := []time.Time{
		time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, loc),
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.FixedZone("", -90*60)),
	}
	for _, want := range cases {
		s := Date(want)
		got, err := s.AsDate()
		if err != nil {
			t.Errorf("%q: %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%q: got %s, want %s", s, got, want)
		}
	}

	if s := Date(cases[1]); string(s) != "D:19991231235959+02'00" {
		t.Errorf("wrong date string %q", s)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"D:2026", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"D:20261015", time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		{"D:20261015123456Z", time.Date(2026, 10, 15, 12, 34, 56, 0, time.UTC)},
		{"D:20261015123456+01'00'", time.Date(2026, 10, 15, 11, 34, 56, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := String(c.in).AsDate()
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("%q: got %s, want %s", c.in, got, c.want)
		}
	}

	for _, in := range []string{"", "2026-10-15", "D:20261315"} {
		if _, err := String(in).AsDate(); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}

func TestVersion(t *testing.T) {
	for _, s := range []string{"1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "1.7", "2.0"} {
		v, err := ParseVersion(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		out, err := v.ToString()
		if err != nil || out != s {
			t.Errorf("%s: round trip gave %q, %v", s, out, err)
		}
	}
	for _, s := range []string{"", "0.9", "1.8", "2.1"} {
		if _, err := ParseVersion(s); err == nil {
			t.Errorf("%q: expected an error", s)
		}
	}

	doc := NewDocument(V1_4)
	doc.RequireVersion(V1_2)
	if doc.Version != V1_4 {
		t.Errorf("version lowered to %s", doc.Version)
	}
	doc.RequireVersion(V1_7)
	if doc.Version != V1_7 {
		t.Errorf("version not raised: %s", doc.Version)
	}
}
