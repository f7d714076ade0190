// Package source finds ecq input files and turns them into token streams.
//
// Two kinds of file are understood: plain sources (*.ecq, or any file named
// explicitly), which are a single token stream, and Markdown documents,
// where each fenced block tagged with the configured language is a stream
// of its own.
package source

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/open-cli-collective/ecq/pkg/mdfence"
	"github.com/open-cli-collective/ecq/pkg/quick"
	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Kind is the kind of an input file.
type Kind int

const (
	Plain Kind = iota
	Markdown
)

// KindOf classifies path by extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return Markdown
	}
	return Plain
}

// Collect expands directories in paths into the *.ecq and Markdown files
// below them. Files named directly are kept whatever their extension.
func Collect(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path == p {
				files = append(files, path)
				return nil
			}
			switch strings.ToLower(filepath.Ext(d.Name())) {
			case ".ecq", ".md", ".markdown":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Unit is one token stream taken from a file.
type Unit struct {
	Name   string
	Line   int // first line of the stream in the file
	Stream tt.Stream
}

// Parse parses the unit. See Expand for how errors are positioned.
func (u Unit) Parse(opts quick.Options) (*quick.File, error) {
	f, err := quick.Parse(u.Stream, opts)
	if err != nil {
		return nil, u.locate(err)
	}
	return f, nil
}

// Expand expands the unit. An empty unit has no token to point at, so its
// error is placed at the start of the unit.
func (u Unit) Expand(opts quick.Options) (tt.Stream, error) {
	out, err := quick.Expand(u.Stream, opts)
	if err != nil {
		return nil, u.locate(err)
	}
	return out, nil
}

func (u Unit) locate(err error) error {
	var pe *quick.ParseError
	if errors.As(err, &pe) && !pe.Pos.IsValid() {
		pe.Pos = tt.Pos{Filename: u.Name, Line: u.Line, Column: 1}
	}
	return err
}

// Units lexes data. A plain file is one unit; a Markdown file has one unit
// per lang block, with positions relative to the Markdown file.
func Units(name string, data []byte, lang string) ([]Unit, error) {
	if KindOf(name) == Plain {
		s, err := tt.Lex(name, string(data))
		if err != nil {
			return nil, err
		}
		return []Unit{{Name: name, Line: 1, Stream: s}}, nil
	}

	var units []Unit
	for _, b := range mdfence.Find(data, lang) {
		s, err := lexBlock(name, b)
		if err != nil {
			return nil, err
		}
		units = append(units, Unit{Name: name, Line: b.Line, Stream: s})
	}
	return units, nil
}

// lexBlock lexes the content of b so that line numbers match the enclosing
// document.
func lexBlock(name string, b mdfence.Block) (tt.Stream, error) {
	return tt.Lex(name, strings.Repeat("\n", b.Line-1)+string(b.Code))
}

// Expand returns the expanded contents of a file. A plain file becomes the
// pretty-printed expansion; in a Markdown file only the lang blocks are
// replaced. found reports how many streams were expanded.
func Expand(name string, data []byte, lang string, opts quick.Options) (out []byte, found int, err error) {
	if KindOf(name) == Plain {
		s, err := tt.Lex(name, string(data))
		if err != nil {
			return nil, 0, err
		}
		expanded, err := Unit{Name: name, Line: 1, Stream: s}.Expand(opts)
		if err != nil {
			return nil, 0, err
		}
		return []byte(tt.Sprint(expanded)), 1, nil
	}

	out, err = mdfence.Rewrite(data, lang, func(b mdfence.Block) ([]byte, error) {
		s, err := lexBlock(name, b)
		if err != nil {
			return nil, err
		}
		expanded, err := Unit{Name: name, Line: b.Line, Stream: s}.Expand(opts)
		if err != nil {
			return nil, err
		}
		found++
		return []byte(tt.Sprint(expanded)), nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, found, nil
}
