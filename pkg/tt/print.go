package tt

import (
	"io"
	"strings"
)

// Fprint writes s to w as readable source: brace groups are broken over
// indented lines and punctuation is spaced the way rustfmt would.
func Fprint(w io.Writer, s Stream) error {
	p := &printer{}
	p.stream(s, Brace)
	p.b.WriteByte('\n')
	_, err := io.WriteString(w, p.b.String())
	return err
}

// Sprint is like Fprint but returns a string.
func Sprint(s Stream) string {
	var b strings.Builder
	Fprint(&b, s)
	return b.String()
}

type printer struct {
	b         strings.Builder
	indent    int
	lineStart bool
	prev      Tree
	run       []Tree // tokens written since the last space or delimiter
}

func (p *printer) newline() {
	if p.lineStart {
		return
	}
	p.b.WriteByte('\n')
	p.lineStart = true
	p.prev = nil
	p.run = nil
}

// stream prints the contents of a group delimited by ctx. Only brace-level
// sequences (and the top level) get line breaks.
func (p *printer) stream(s Stream, ctx Delimiter) {
	var before, last Tree
	for _, t := range s {
		if ctx == Brace && last != nil && breakBefore(before, last, t) {
			p.newline()
		}
		p.tree(t)
		before, last = last, t
	}
}

// breakBefore reports whether a line break belongs between prev and next.
// A comma only ends a line when it follows a group, so short lists such as
// "A, B, C;" stay on one line.
func breakBefore(before, prev, next Tree) bool {
	switch prev := prev.(type) {
	case *Punct:
		if prev.Text == "," {
			_, afterGroup := before.(*Group)
			return afterGroup
		}
		return prev.Text == ";"
	case *Group:
		if p, ok := next.(*Punct); ok && (p.Text == "," || p.Text == ";") {
			return false
		}
		if prev.Delim == Brace {
			return true
		}
		_, isIdent := next.(*Ident)
		return prev.Delim == Paren && isIdent
	}
	return false
}

func (p *printer) tree(t Tree) {
	if p.lineStart {
		p.b.WriteString(strings.Repeat("    ", p.indent))
		p.lineStart = false
	} else if p.prev != nil && (spaceBetween(p.prev, t) || p.fuses(t)) {
		p.b.WriteByte(' ')
		p.run = nil
	}

	switch t := t.(type) {
	case *Group:
		p.group(t)
		p.run = nil
	default:
		p.b.WriteString(t.String())
		p.run = append(p.run, t)
	}
	p.prev = t
}

// fuses reports whether writing t right after the current run would lex
// differently, as in "& &" becoming "&&" or "1 . 5" becoming "1.5".
func (p *printer) fuses(t Tree) bool {
	if _, ok := t.(*Group); ok || len(p.run) == 0 {
		return false
	}
	var b strings.Builder
	for _, r := range p.run {
		b.WriteString(r.String())
	}
	b.WriteString(t.String())

	s, err := Lex("", b.String())
	if err != nil || len(s) != len(p.run)+1 {
		return true
	}
	for i, r := range p.run {
		if s[i].String() != r.String() {
			return true
		}
	}
	return s[len(p.run)].String() != t.String()
}

func (p *printer) group(g *Group) {
	if g.Delim != Brace || len(g.Trees) == 0 {
		p.b.WriteString(g.Delim.Open())
		p.prev = nil
		p.run = nil
		p.stream(g.Trees, g.Delim)
		p.b.WriteString(g.Delim.Close())
		return
	}
	p.b.WriteString("{")
	p.indent++
	p.newline()
	p.stream(g.Trees, Brace)
	p.indent--
	p.newline()
	p.b.WriteString(strings.Repeat("    ", p.indent))
	p.lineStart = false
	p.b.WriteString("}")
}

func spaceBetween(a, b Tree) bool {
	if pa, ok := a.(*Punct); ok {
		switch pa.Text {
		case "::", ".", "#", "&":
			return false
		case "!":
			g, ok := b.(*Group)
			return ok && g.Delim == Brace
		}
	}
	switch b := b.(type) {
	case *Punct:
		switch b.Text {
		case ",", ";", ":", ".", "!", "?":
			return false
		case "::":
			_, afterIdent := a.(*Ident)
			return !afterIdent
		}
	case *Group:
		if b.Delim == Paren || b.Delim == Bracket {
			_, afterIdent := a.(*Ident)
			return !afterIdent
		}
	}
	return true
}
