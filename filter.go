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
	"fmt"

	"seehuhn.de/go/pdfops/internal/filter"
)

// FilterInfo describes one PDF stream filter, as given by the /Filter and
// /DecodeParms entries of a stream dictionary.
type FilterInfo struct {
	Name  Name
	Parms Dict
}

// Abbreviated filter names, as used in inline images.
var filterAbbrev = map[Name]Name{
	"AHx": "ASCIIHexDecode",
	"A85": "ASCII85Decode",
	"LZW": "LZWDecode",
	"Fl":  "FlateDecode",
	"RL":  "RunLengthDecode",
	"CCF": "CCITTFaxDecode",
	"DCT": "DCTDecode",
}

// IsSupported reports whether the filter can be decoded by [FilterInfo.Apply].
// Image codecs like DCTDecode, JPXDecode and JBIG2Decode are not supported.
func (fi *FilterInfo) IsSupported() bool {
	switch fi.Name {
	case "FlateDecode", "LZWDecode", "ASCIIHexDecode", "ASCII85Decode",
		"RunLengthDecode", "CCITTFaxDecode":
		return true
	}
	return false
}

// Apply decodes data using the filter.
func (fi *FilterInfo) Apply(data []byte) ([]byte, error) {
	var err error
	switch fi.Name {
	case "FlateDecode":
		data, err = filter.Flate(data)
		if err != nil {
			return nil, err
		}
		return fi.predict(data)
	case "LZWDecode":
		data, err = filter.LZW(data, fi.getInt("EarlyChange", 1) == 1)
		if err != nil {
			return nil, err
		}
		return fi.predict(data)
	case "ASCIIHexDecode":
		return filter.ASCIIHex(data)
	case "ASCII85Decode":
		return filter.ASCII85(data)
	case "RunLengthDecode":
		return filter.RunLength(data)
	case "CCITTFaxDecode":
		p := &filter.CCITTParams{
			K:                fi.getInt("K", 0),
			Columns:          fi.getInt("Columns", 1728),
			Rows:             fi.getInt("Rows", 0),
			EncodedByteAlign: fi.getBool("EncodedByteAlign"),
			BlackIs1:         fi.getBool("BlackIs1"),
		}
		return filter.CCITTFax(data, p)
	default:
		return nil, &UnsupportedFilterError{Filter: fi.Name}
	}
}

func (fi *FilterInfo) predict(data []byte) ([]byte, error) {
	p := &filter.PredictParams{
		Predictor:        fi.getInt("Predictor", 1),
		Colors:           fi.getInt("Colors", 1),
		BitsPerComponent: fi.getInt("BitsPerComponent", 8),
		Columns:          fi.getInt("Columns", 1),
	}
	if p.Predictor <= 1 {
		return data, nil
	}
	return filter.Predict(data, p)
}

func (fi *FilterInfo) getInt(key Name, defVal int) int {
	switch x := fi.Parms[key].(type) {
	case Integer:
		return int(x)
	case Real:
		return int(x)
	}
	return defVal
}

func (fi *FilterInfo) getBool(key Name) bool {
	x, _ := fi.Parms[key].(Bool)
	return bool(x)
}

// Filters extracts the information contained in the /Filter and /DecodeParms
// entries of the stream dictionary.  If r is non-nil, it is used to resolve
// indirect references.
func (x *Stream) Filters(r Getter) ([]*FilterInfo, error) {
	parms, err := Resolve(r, x.Dict["DecodeParms"])
	if err != nil {
		return nil, err
	}
	filterObj, err := Resolve(r, x.Dict["Filter"])
	if err != nil {
		return nil, err
	}

	var filters []*FilterInfo
	switch f := filterObj.(type) {
	case nil:
		// pass
	case Array:
		pa, _ := parms.(Array)
		for i, fObj := range f {
			name, err := GetName(r, fObj)
			if err != nil {
				return nil, err
			}
			var pDict Dict
			if i < len(pa) {
				pDict, err = GetDict(r, pa[i])
				if err != nil {
					return nil, err
				}
			}
			filters = append(filters, newFilterInfo(name, pDict))
		}
	case Name:
		pDict, err := GetDict(r, parms)
		if err != nil {
			return nil, err
		}
		filters = append(filters, newFilterInfo(f, pDict))
	default:
		return nil, &MalformedDocumentError{
			Err: fmt.Errorf("invalid /Filter value %s", Format(filterObj)),
		}
	}
	return filters, nil
}

func newFilterInfo(name Name, parms Dict) *FilterInfo {
	if long, ok := filterAbbrev[name]; ok {
		name = long
	}
	return &FilterInfo{Name: name, Parms: parms}
}

// IsImageCodec reports whether name is one of the filters which encode a
// complete image file format, so that the filtered data can be used
// directly as an image file.
func IsImageCodec(name Name) bool {
	return name == "DCTDecode" || name == "JPXDecode" || name == "JBIG2Decode"
}
