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
)

// maxRefDepth limits the length of reference chains followed by Resolve.
const maxRefDepth = 16

// Resolve resolves references to indirect objects.
//
// If obj is a Reference, the function reads the corresponding object from
// r and returns the result.  Chains of references are followed.  If obj is
// not a Reference, it is returned unchanged.
func Resolve(r Getter, obj Object) (Object, error) {
	for range maxRefDepth {
		ref, isReference := obj.(Reference)
		if !isReference {
			return obj, nil
		}
		if r == nil {
			return nil, fmt.Errorf("cannot resolve %s without a document", ref)
		}
		var err error
		obj, err = r.Get(ref)
		if err != nil {
			return nil, err
		}
	}
	return nil, &MalformedDocumentError{Err: errRefLoop}
}

func wrongType(expected string, obj Object) error {
	return &MalformedDocumentError{
		Err: fmt.Errorf("expected %s but got %T", expected, obj),
	}
}

// GetDict resolves references to indirect objects and makes sure the
// resulting object is a dictionary.  The null object is returned as a nil
// dictionary, without an error.
func GetDict(r Getter, obj Object) (Dict, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case Dict:
		return x, nil
	default:
		return nil, wrongType("Dict", obj)
	}
}

// GetArray resolves references to indirect objects and makes sure the
// resulting object is an array.
func GetArray(r Getter, obj Object) (Array, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case Array:
		return x, nil
	default:
		return nil, wrongType("Array", obj)
	}
}

// GetName resolves references to indirect objects and makes sure the
// resulting object is a name.
func GetName(r Getter, obj Object) (Name, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return "", err
	}
	switch x := obj.(type) {
	case nil:
		return "", nil
	case Name:
		return x, nil
	default:
		return "", wrongType("Name", obj)
	}
}

// GetInteger resolves references to indirect objects and makes sure the
// resulting object is an integer.  Real numbers with an integral value are
// accepted.
func GetInteger(r Getter, obj Object) (Integer, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return x, nil
	case Real:
		if float64(x) == float64(int64(x)) {
			return Integer(x), nil
		}
	}
	return 0, wrongType("Integer", obj)
}

// GetNumber resolves references to indirect objects and makes sure the
// resulting object is a number.
func GetNumber(r Getter, obj Object) (float64, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	default:
		return 0, wrongType("number", obj)
	}
}

// GetString resolves references to indirect objects and makes sure the
// resulting object is a string.
func GetString(r Getter, obj Object) (String, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case String:
		return x, nil
	default:
		return nil, wrongType("String", obj)
	}
}

// GetTextString resolves references to indirect objects and returns the
// text string as a Go string.
func GetTextString(r Getter, obj Object) (string, error) {
	s, err := GetString(r, obj)
	if err != nil {
		return "", err
	}
	return s.AsTextString(), nil
}

// GetStream resolves references to indirect objects and makes sure the
// resulting object is a stream.
func GetStream(r Getter, obj Object) (*Stream, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case *Stream:
		return x, nil
	default:
		return nil, wrongType("Stream", obj)
	}
}

// Optional can be used to ignore type errors and dangling references when
// reading optional entries.  Other errors are returned unchanged.
func Optional[T any](x T, err error) (T, error) {
	var malformed *MalformedDocumentError
	if errors.As(err, &malformed) {
		return x, nil
	}
	return x, err
}
