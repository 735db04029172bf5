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

package images

import (
	"fmt"
	"image/color"

	"seehuhn.de/go/icc"

	"seehuhn.de/go/pdfops"
)

// colorSpace describes how the samples of an image are mapped to colors.
type colorSpace struct {
	// channels is the number of color components of the space, 1 for
	// gray, 3 for RGB and 4 for CMYK.
	channels int

	// palette is non-nil for indexed color spaces.  The samples of these
	// images have a single component, the palette index.
	palette color.Palette
}

// maxColorSpaceDepth limits the recursion for named and indexed color
// spaces.
const maxColorSpaceDepth = 4

func unsupportedSpace(obj pdfops.Object) error {
	return &pdfops.UnsupportedStructureError{
		What: fmt.Sprintf("color space %s", pdfops.Format(obj)),
	}
}

// getColorSpace decodes the color space obj.  Names which are not device
// color spaces are looked up in the /ColorSpace resources.
func getColorSpace(r pdfops.Getter, resources pdfops.Dict, obj pdfops.Object, depth int) (*colorSpace, error) {
	if depth > maxColorSpaceDepth {
		return nil, unsupportedSpace(obj)
	}
	obj, err := pdfops.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	switch obj := obj.(type) {
	case pdfops.Name:
		switch obj {
		case "DeviceGray", "G", "CalGray":
			return &colorSpace{channels: 1}, nil
		case "DeviceRGB", "RGB", "CalRGB":
			return &colorSpace{channels: 3}, nil
		case "DeviceCMYK", "CMYK":
			return &colorSpace{channels: 4}, nil
		}
		named, err := pdfops.GetDict(r, resources["ColorSpace"])
		if err != nil {
			return nil, err
		}
		if def, ok := named[obj]; ok {
			return getColorSpace(r, resources, def, depth+1)
		}
	case pdfops.Array:
		if len(obj) == 0 {
			break
		}
		family, err := pdfops.GetName(r, obj[0])
		if err != nil {
			return nil, err
		}
		switch family {
		case "CalGray":
			return &colorSpace{channels: 1}, nil
		case "CalRGB":
			return &colorSpace{channels: 3}, nil
		case "DeviceGray", "DeviceRGB", "DeviceCMYK":
			return getColorSpace(r, resources, family, depth+1)
		case "ICCBased":
			if len(obj) < 2 {
				break
			}
			n, err := iccChannels(r, obj[1])
			if err != nil {
				return nil, err
			}
			return &colorSpace{channels: n}, nil
		case "Indexed", "I":
			if len(obj) != 4 {
				break
			}
			return getIndexed(r, resources, obj, depth)
		}
	}
	return nil, unsupportedSpace(obj)
}

// iccChannels returns the number of components of an ICC based color
// space.  The /N entry of the stream dictionary is used if present,
// otherwise the number is read from the profile header.
func iccChannels(r pdfops.Getter, obj pdfops.Object) (int, error) {
	stm, err := pdfops.GetStream(r, obj)
	if err != nil {
		return 0, err
	} else if stm == nil {
		return 0, unsupportedSpace(obj)
	}

	n, err := pdfops.Optional(pdfops.GetInteger(r, stm.Dict["N"]))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		profile, err := stm.Decode(r)
		if err != nil {
			return 0, err
		}
		p, err := icc.Decode(profile)
		if err != nil {
			return 0, &pdfops.MalformedDocumentError{Err: fmt.Errorf("ICC profile: %w", err)}
		}
		n = pdfops.Integer(p.ColorSpace.NumComponents())
	}

	switch n {
	case 1, 3, 4:
		return int(n), nil
	default:
		return 0, &pdfops.UnsupportedStructureError{
			What: fmt.Sprintf("ICC based color space with %d components", n),
		}
	}
}

// getIndexed decodes an array [/Indexed base hival lookup].
func getIndexed(r pdfops.Getter, resources pdfops.Dict, a pdfops.Array, depth int) (*colorSpace, error) {
	base, err := getColorSpace(r, resources, a[1], depth+1)
	if err != nil {
		return nil, err
	} else if base.palette != nil {
		return nil, unsupportedSpace(a)
	}

	hival, err := pdfops.GetInteger(r, a[2])
	if err != nil {
		return nil, err
	}
	if hival < 0 || hival > 255 {
		return nil, &pdfops.MalformedDocumentError{
			Err: fmt.Errorf("invalid hival %d for indexed color space", hival),
		}
	}

	lookupObj, err := pdfops.Resolve(r, a[3])
	if err != nil {
		return nil, err
	}
	var lookup []byte
	switch obj := lookupObj.(type) {
	case pdfops.String:
		lookup = obj
	case *pdfops.Stream:
		lookup, err = obj.Decode(r)
		if err != nil {
			return nil, err
		}
	default:
		return nil, unsupportedSpace(a)
	}

	numColors := int(hival) + 1
	if len(lookup) < numColors*base.channels {
		return nil, &pdfops.MalformedDocumentError{
			Err: fmt.Errorf("lookup table too short: %d < %d", len(lookup), numColors*base.channels),
		}
	}

	palette := make(color.Palette, numColors)
	for i := range palette {
		c := lookup[i*base.channels : (i+1)*base.channels]
		switch base.channels {
		case 1:
			palette[i] = color.Gray{Y: c[0]}
		case 3:
			palette[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
		case 4:
			palette[i] = color.CMYK{C: c[0], M: c[1], Y: c[2], K: c[3]}
		}
	}
	return &colorSpace{channels: 1, palette: palette}, nil
}
