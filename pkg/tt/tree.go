// Package tt defines the token tree that the expander consumes and produces:
// atomic tokens (identifiers, punctuation, literals) and delimited groups.
package tt

import (
	"fmt"
	"strings"
)

// Pos is a position in source text. The zero Pos is "unknown".
type Pos struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IsValid reports whether the position carries line information.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		if p.Filename != "" {
			return p.Filename
		}
		return "-"
	}
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Delimiter is the bracket kind of a Group.
type Delimiter int

const (
	None    Delimiter = iota // invisible group
	Paren                    // ( )
	Brace                    // { }
	Bracket                  // [ ]
)

// Open returns the opening bracket, or "" for None.
func (d Delimiter) Open() string {
	switch d {
	case Paren:
		return "("
	case Brace:
		return "{"
	case Bracket:
		return "["
	}
	return ""
}

// Close returns the closing bracket, or "" for None.
func (d Delimiter) Close() string {
	switch d {
	case Paren:
		return ")"
	case Brace:
		return "}"
	case Bracket:
		return "]"
	}
	return ""
}

func (d Delimiter) String() string {
	switch d {
	case None:
		return "none"
	case Paren:
		return "parenthesis"
	case Brace:
		return "brace"
	case Bracket:
		return "bracket"
	}
	return fmt.Sprintf("Delimiter(%d)", int(d))
}

// Tree is a single node of a token tree. The set of implementations is
// closed: *Ident, *Punct, *Literal and *Group.
type Tree interface {
	Start() Pos
	String() string
	tree()
}

// Ident is an identifier or keyword.
type Ident struct {
	Name string
	Pos  Pos
}

// Punct is a punctuation token, possibly multi-character (e.g. "::").
type Punct struct {
	Text string
	Pos  Pos
}

// LitKind classifies a Literal.
type LitKind int

const (
	LitString LitKind = iota // "..."
	LitChar                  // 'x'
	LitNumber                // 42, 1.5, 0xff
	LitOther                 // lifetimes and anything else opaque
)

func (k LitKind) String() string {
	switch k {
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitNumber:
		return "number"
	}
	return "literal"
}

// Literal is a literal token. Text is the source spelling, quotes included.
type Literal struct {
	Kind LitKind
	Text string
	Pos  Pos
}

// Group is a delimited sequence of trees.
type Group struct {
	Delim Delimiter
	Trees Stream
	Open  Pos
	Close Pos
}

func (t *Ident) Start() Pos   { return t.Pos }
func (t *Punct) Start() Pos   { return t.Pos }
func (t *Literal) Start() Pos { return t.Pos }
func (t *Group) Start() Pos   { return t.Open }

func (*Ident) tree()   {}
func (*Punct) tree()   {}
func (*Literal) tree() {}
func (*Group) tree()   {}

func (t *Ident) String() string   { return t.Name }
func (t *Punct) String() string   { return t.Text }
func (t *Literal) String() string { return t.Text }

func (t *Group) String() string {
	var b strings.Builder
	b.WriteString(t.Delim.Open())
	if len(t.Trees) > 0 {
		if t.Delim != None {
			b.WriteByte(' ')
		}
		b.WriteString(t.Trees.String())
		if t.Delim != None {
			b.WriteByte(' ')
		}
	}
	b.WriteString(t.Delim.Close())
	return b.String()
}

// WithSuffix returns a copy of the string literal t with suffix appended to
// its contents. The source spelling of t (escapes, raw form) is kept as is,
// so suffix must not need escaping in any string form.
func (t *Literal) WithSuffix(suffix string) (*Literal, error) {
	i := strings.LastIndexByte(t.Text, '"')
	if t.Kind != LitString || i <= 0 {
		return nil, fmt.Errorf("%v literal %s is not a string", t.Kind, t.Text)
	}
	return &Literal{Kind: LitString, Text: t.Text[:i] + suffix + t.Text[i:], Pos: t.Pos}, nil
}

// NewIdent returns an identifier at pos.
func NewIdent(name string, pos Pos) *Ident { return &Ident{Name: name, Pos: pos} }

// NewPunct returns a punctuation token at pos.
func NewPunct(text string, pos Pos) *Punct { return &Punct{Text: text, Pos: pos} }

// NewGroup returns a group of the given delimiter around trees.
func NewGroup(delim Delimiter, pos Pos, trees ...Tree) *Group {
	return &Group{Delim: delim, Trees: Stream(trees), Open: pos, Close: pos}
}

// Stream is an ordered sequence of trees.
type Stream []Tree

// String renders the stream with every token separated by a single space,
// the form used to compare streams independent of layout.
func (s Stream) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy of s.
func (s Stream) Clone() Stream {
	if s == nil {
		return nil
	}
	out := make(Stream, len(s))
	for i, t := range s {
		out[i] = Clone(t)
	}
	return out
}

// Clone returns a deep copy of t.
func Clone(t Tree) Tree {
	switch t := t.(type) {
	case *Ident:
		c := *t
		return &c
	case *Punct:
		c := *t
		return &c
	case *Literal:
		c := *t
		return &c
	case *Group:
		c := *t
		c.Trees = t.Trees.Clone()
		return &c
	}
	panic(fmt.Sprintf("tt: unknown tree type %T", t))
}

// At moves every token of s to pos, recursively. It is used for synthesized
// streams (such as a configured type) so diagnostics point at their origin.
func (s Stream) At(pos Pos) Stream {
	out := s.Clone()
	for _, t := range out {
		setPos(t, pos)
	}
	return out
}

func setPos(t Tree, pos Pos) {
	switch t := t.(type) {
	case *Ident:
		t.Pos = pos
	case *Punct:
		t.Pos = pos
	case *Literal:
		t.Pos = pos
	case *Group:
		t.Open, t.Close = pos, pos
		for _, c := range t.Trees {
			setPos(c, pos)
		}
	}
}
