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
	"errors"
	"fmt"
	"io"
)

// Serialize writes the document to a new byte slice.
func Serialize(d *Document) ([]byte, error) {
	buf := &bytes.Buffer{}
	_, err := d.WriteTo(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the complete document to w.
//
// Only objects reachable from the /Root and /Info entries of the trailer
// are written.  Objects are renumbered densely, starting at 1, and a
// classic cross-reference table is used.  Incremental updates are not
// supported; every call writes the full document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if _, ok := d.Trailer["Root"]; !ok {
		return 0, errors.New("missing /Root in trailer")
	}

	out := NewDocument(d.Version)
	c := NewCopier(out, d)
	trailer := Dict{}
	for _, key := range []Name{"Root", "Info"} {
		val, ok := d.Trailer[key]
		if !ok {
			continue
		}
		obj, err := c.Copy(val)
		if err != nil {
			return 0, fmt.Errorf("/%s: %w", key, err)
		}
		if _, isRef := obj.(Reference); !isRef && obj != nil {
			obj = out.Add(obj)
		}
		trailer[key] = obj
	}
	if id, ok := d.Trailer["ID"].(Array); ok && len(id) == 2 {
		trailer["ID"] = id
	}

	ver, err := d.Version.ToString()
	if err != nil {
		return 0, err
	}

	pw := &posWriter{w: w}
	_, err = fmt.Fprintf(pw, "%%PDF-%s\n%%\x80\x80\x80\x80\n", ver)
	if err != nil {
		return pw.pos, err
	}

	xref := make([]*xRefEntry, out.nextNum)
	xref[0] = &xRefEntry{Pos: -1, Generation: 65535}
	for num := uint32(1); num < out.nextNum; num++ {
		obj, ok := out.objects[num]
		if !ok {
			xref[num] = &xRefEntry{Pos: -1}
			continue
		}
		xref[num] = &xRefEntry{Pos: pw.pos}
		err = writeIndirect(pw, NewReference(num, 0), obj)
		if err != nil {
			return pw.pos, err
		}
	}

	trailer["Size"] = Integer(len(xref))
	xRefPos := pw.pos
	err = writeXRefTable(pw, xref, trailer)
	if err != nil {
		return pw.pos, err
	}
	_, err = fmt.Fprintf(pw, "\nstartxref\n%d\n%%%%EOF\n", xRefPos)
	return pw.pos, err
}

func writeIndirect(w io.Writer, ref Reference, obj Object) error {
	_, err := fmt.Fprintf(w, "%d %d obj\n", ref.Number(), ref.Generation())
	if err != nil {
		return err
	}
	if obj == nil {
		_, err = io.WriteString(w, "null")
	} else {
		err = obj.PDF(w)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nendobj\n")
	return err
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
