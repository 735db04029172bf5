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

// Pdfops merges, stamps and inspects PDF files.
//
// Usage:
//
//	pdfops [-v] <command> [options] <args>
//
// Run "pdfops help" for a list of commands.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"

	"seehuhn.de/go/pdfops/transform"
)

// A command is one of the subcommands of the program.
type command struct {
	name  string
	args  string
	help  string
	setup func(fs *flag.FlagSet) func(opt *transform.Options, args []string) error
}

var commands []*command

func main() {
	verbose := flag.Bool("v", false, "log progress messages")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	name := flag.Arg(0)
	if name == "help" {
		usage()
		return
	}
	idx := slices.IndexFunc(commands, func(c *command) bool { return c.name == name })
	if idx < 0 {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", name)
		usage()
		os.Exit(2)
	}
	cmd := commands[idx]

	fs := flag.NewFlagSet(cmd.name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: pdfops %s [options] %s\n\n%s\n\n", cmd.name, cmd.args, cmd.help)
		fs.PrintDefaults()
	}
	run := cmd.setup(fs)
	fs.Parse(flag.Args()[1:])

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	opt := &transform.Options{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}

	err := run(opt, fs.Args())
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(os.Stderr, "error:", err)
		fs.Usage()
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pdfops [-v] <command> [options] <args>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, firstLine(c.help))
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run \"pdfops <command> -h\" for the options of a command.")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

type usageError struct {
	msg string
}

func (err *usageError) Error() string {
	return err.msg
}

func needArgs(args []string, n int) error {
	if len(args) < n {
		return &usageError{msg: "not enough arguments"}
	}
	return nil
}

// writeOutput writes PDF data to the named file, or to standard output if
// name is "-".  Binary data is not written to a terminal.
func writeOutput(name string, data []byte) error {
	if name == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write PDF data to a terminal")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

func readInputs(names []string) ([][]byte, error) {
	res := make([][]byte, len(names))
	for i, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		res[i] = data
	}
	return res, nil
}
