// Package quick expands the quick!() shorthand inside an errors block into
// canonical error_chain! entries.
//
// The pipeline is Parse, Rewrite, Serialize; Expand runs all three. Input
// and output are token trees (see package tt). Everything outside the
// shorthand is replayed verbatim.
package quick

import (
	"fmt"
	"strings"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

// File is the parsed input: a non-empty sequence of root items.
type File struct {
	Items []RootItem
}

// RootItem is a *Block or an *OpaqueGroup.
type RootItem interface {
	rootItem()
}

// Entry is a *ShorthandEntry or a *CanonicalEntry.
type Entry interface {
	entry()
	EntryName() *tt.Ident
}

// Block is the designated errors block.
type Block struct {
	Name    *tt.Ident
	Entries []Entry
}

// OpaqueGroup is any other top-level construct, kept as is.
type OpaqueGroup struct {
	Name *tt.Ident
	Body *tt.Group // may be nil
}

// CanonicalEntry is Name (params) { body }, with params optional.
type CanonicalEntry struct {
	Name   *tt.Ident
	Params *tt.Group // nil or parenthesized
	Body   *tt.Group // braced
}

// ShorthandEntry is quick!(Name, "description", (args...)).
type ShorthandEntry struct {
	Keyword     *tt.Ident
	Name        *tt.Ident
	Description *tt.Literal
	Args        []*tt.Ident
}

func (*Block) rootItem()       {}
func (*OpaqueGroup) rootItem() {}

func (*CanonicalEntry) entry() {}
func (*ShorthandEntry) entry() {}

func (e *CanonicalEntry) EntryName() *tt.Ident { return e.Name }
func (e *ShorthandEntry) EntryName() *tt.Ident { return e.Name }

func (e *ShorthandEntry) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Name
	}
	return fmt.Sprintf("ShorthandEntry{Name: %s, Description: %s, Args: [%s]}",
		e.Name.Name, e.Description.Text, strings.Join(args, ", "))
}

// Shorthands returns every shorthand entry still present in f, in order.
func (f *File) Shorthands() []*ShorthandEntry {
	var out []*ShorthandEntry
	for _, item := range f.Items {
		b, ok := item.(*Block)
		if !ok {
			continue
		}
		for _, e := range b.Entries {
			if s, ok := e.(*ShorthandEntry); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Blocks returns the errors blocks of f, in order.
func (f *File) Blocks() []*Block {
	var out []*Block
	for _, item := range f.Items {
		if b, ok := item.(*Block); ok {
			out = append(out, b)
		}
	}
	return out
}
