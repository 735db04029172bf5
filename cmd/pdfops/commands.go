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

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfops"
	"seehuhn.de/go/pdfops/attach"
	"seehuhn.de/go/pdfops/docinfo"
	"seehuhn.de/go/pdfops/stamp"
	"seehuhn.de/go/pdfops/transform"
)

func init() {
	commands = []*command{
		{name: "merge", args: "in.pdf in.pdf...", help: "Concatenate the pages of several PDF files.", setup: setupMerge},
		{name: "watermark", args: "in.pdf", help: "Draw a translucent text onto every page.", setup: setupWatermark},
		{name: "page", args: "in.pdf", help: "Extract a single page.", setup: setupPage},
		{name: "count", args: "in.pdf...", help: "Print the number of pages.", setup: setupCount},
		{name: "attach", args: "in.pdf file...", help: "Embed files into a PDF file.", setup: setupAttach},
		{name: "detach", args: "in.pdf", help: "Write the embedded files of a PDF file to a directory.", setup: setupDetach},
		{name: "images", args: "in.pdf", help: "Write the images of the first page to a directory.", setup: setupImages},
		{name: "fold", args: "in.pdf", help: "Draw folding lines onto every page.", setup: setupFold},
		{name: "stamp", args: "in.pdf", help: "Add header and footer images to the first page.", setup: setupStamp},
		{name: "info", args: "in.pdf", help: "Show the document information dictionary.", setup: setupInfo},
	}
}

type runFunc = func(opt *transform.Options, args []string) error

func setupMerge(fs *flag.FlagSet) runFunc {
	out := fs.String("o", "out.pdf", "output file name, or - for standard output")
	text := fs.String("w", "", "add a watermark with the given text")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 2); err != nil {
			return err
		}
		inputs, err := readInputs(args)
		if err != nil {
			return err
		}
		var data []byte
		if *text != "" {
			opt.Watermark = &stamp.WatermarkOptions{Text: *text}
			data, err = transform.MergeAndWatermark(inputs, opt)
		} else {
			data, err = transform.Merge(inputs, opt)
		}
		if err != nil {
			return err
		}
		return writeOutput(*out, data)
	}
}

func setupWatermark(fs *flag.FlagSet) runFunc {
	out := fs.String("o", "out.pdf", "output file name, or - for standard output")
	wm := &stamp.WatermarkOptions{}
	fs.StringVar(&wm.Text, "text", stamp.DefaultWatermarkText, "watermark text")
	fs.Float64Var(&wm.FontSize, "size", stamp.DefaultWatermarkFontSize, "font size")
	fs.Float64Var(&wm.Angle, "angle", stamp.DefaultWatermarkAngle, "rotation angle in degrees")
	fs.Float64Var(&wm.Opacity, "opacity", stamp.DefaultWatermarkOpacity, "opacity between 0 and 1")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		opt.Watermark = wm
		data, err := transform.Watermark(in, opt)
		if err != nil {
			return err
		}
		return writeOutput(*out, data)
	}
}

func setupPage(fs *flag.FlagSet) runFunc {
	out := fs.String("o", "out.pdf", "output file name, or - for standard output")
	pageNo := fs.Int("n", 1, "page number, starting at 1")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		data, err := transform.Page(in, *pageNo, opt)
		if err != nil {
			return err
		}
		return writeOutput(*out, data)
	}
}

func setupCount(*flag.FlagSet) runFunc {
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		for _, name := range args {
			in, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			n, err := transform.PageCount(in, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if len(args) > 1 {
				fmt.Printf("%s: %d\n", name, n)
			} else {
				fmt.Println(n)
			}
		}
		return nil
	}
}

func setupAttach(fs *flag.FlagSet) runFunc {
	out := fs.String("o", "out.pdf", "output file name, or - for standard output")
	desc := fs.String("d", "", "description of the attached files")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 2); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var files []attach.Attachment
		for _, name := range args[1:] {
			data, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			files = append(files, attach.Attachment{
				Data:        data,
				Filename:    filepath.Base(name),
				Description: *desc,
			})
		}
		data, err := transform.AddAttachments(in, files, opt)
		if err != nil {
			return err
		}
		return writeOutput(*out, data)
	}
}

func setupDetach(fs *flag.FlagSet) runFunc {
	dir := fs.String("dir", ".", "output directory")
	ext := fs.String("ext", "", "comma-separated list of allowed file name extensions")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var allowed []string
		if *ext != "" {
			allowed = strings.Split(*ext, ",")
		}
		files, err := transform.Attachments(in, opt, allowed...)
		if err != nil {
			return err
		}
		names := maps.Keys(files)
		slices.Sort(names)
		for _, name := range names {
			fname := filepath.Join(*dir, filepath.Base(name))
			err := os.WriteFile(fname, files[name], 0o644)
			if err != nil {
				return err
			}
			fmt.Println(fname)
		}
		return nil
	}
}

func setupImages(fs *flag.FlagSet) runFunc {
	dir := fs.String("dir", ".", "output directory")
	prefix := fs.String("prefix", "image", "prefix for the output file names")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		imgs, err := transform.BarcodeImages([][]byte{in}, opt)
		if err != nil {
			return err
		}
		for i, data := range imgs {
			fname := filepath.Join(*dir, fmt.Sprintf("%s-%d%s", *prefix, i+1, imageExt(data)))
			err := os.WriteFile(fname, data, 0o644)
			if err != nil {
				return err
			}
			fmt.Println(fname)
		}
		return nil
	}
}

// imageExt guesses the file name extension for image data returned by
// transform.BarcodeImages.
func imageExt(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return ".png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
		return ".jpg"
	case bytes.HasPrefix(data, []byte("\x00\x00\x00\x0cjP  ")),
		bytes.HasPrefix(data, []byte{0xFF, 0x4F, 0xFF, 0x51}):
		return ".jp2"
	default:
		return ".jbig2"
	}
}

func setupFold(fs *flag.FlagSet) runFunc {
	out := fs.String("o", "out.pdf", "output file name, or - for standard output")
	var lines []stamp.FoldingLine
	fs.Func("line", "folding line `x1,y1,x2,y2` in PDF units (can be repeated)", func(s string) error {
		parts := strings.Split(s, ",")
		if len(parts) != 4 {
			return fmt.Errorf("expected four coordinates, got %q", s)
		}
		var x [4]float64
		for i, part := range parts {
			var err error
			x[i], err = strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return err
			}
		}
		lines = append(lines, stamp.FoldingLine{
			Start: vec.Vec2{X: x[0], Y: x[1]},
			End:   vec.Vec2{X: x[2], Y: x[3]},
		})
		return nil
	})
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		data, err := transform.AddFoldingLines(in, lines, opt)
		if err != nil {
			return err
		}
		return writeOutput(*out, data)
	}
}

func setupStamp(fs *flag.FlagSet) runFunc {
	out := fs.String("o", "out.pdf", "output file name, or - for standard output")
	header := fs.String("header", "", "header image file")
	footer := fs.String("footer", "", "footer image file")
	margin := fs.Float64("margin", 36, "page margin in PDF units")
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		if *header == "" && *footer == "" {
			return &usageError{msg: "no header or footer image given"}
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		dec := &stamp.StaticDecorator{}
		if *header != "" {
			dec.Header = &stamp.ImageSource{Editable: true, EditablePath: *header}
		}
		if *footer != "" {
			dec.Footer = &stamp.ImageSource{Editable: true, EditablePath: *footer}
		}
		opt.HeaderFooter = &stamp.HeaderFooterOptions{Margin: *margin}
		data, err := transform.PostProcess(in, dec, opt)
		if err != nil {
			return err
		}
		return writeOutput(*out, data)
	}
}

func setupInfo(*flag.FlagSet) runFunc {
	return func(opt *transform.Options, args []string) error {
		if err := needArgs(args, 1); err != nil {
			return err
		}
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := pdfops.Parse(in)
		if err != nil {
			return err
		}
		info, err := docinfo.Read(doc)
		if err != nil {
			return err
		}
		numPages, err := transform.PageCount(in, opt)
		if err != nil {
			return err
		}

		fmt.Printf("PDF version: %s\n", doc.Version)
		fmt.Printf("pages: %d\n", numPages)
		for _, field := range []struct{ label, value string }{
			{"title", info.Title},
			{"author", info.Author},
			{"subject", info.Subject},
			{"keywords", info.Keywords},
			{"creator", info.Creator},
			{"producer", info.Producer},
		} {
			if field.value != "" {
				fmt.Printf("%s: %s\n", field.label, field.value)
			}
		}
		if !info.CreationDate.IsZero() {
			fmt.Printf("created: %s\n", info.CreationDate)
		}
		if !info.ModDate.IsZero() {
			fmt.Printf("modified: %s\n", info.ModDate)
		}
		return nil
	}
}
