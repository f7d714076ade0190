package tt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// LexError records a tokenizer failure and where it happened.
type LexError struct {
	Pos Pos
	Err error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%v: %v", e.Pos, e.Err)
}

func (e *LexError) Unwrap() error { return e.Err }

// Rust-flavoured token rules. Order matters: the first matching rule wins.
var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "RawString", Pattern: `r"[^"]*"|r#"(?s:.*?)"#`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Char", Pattern: `'(?:[^'\\\n]|\\[^\n][^'\n]*)'`},
	{Name: "Lifetime", Pattern: `'[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[0-9][0-9A-Za-z_]*(?:\.[0-9][0-9A-Za-z_]*)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Open", Pattern: `[(\[{]`},
	{Name: "Close", Pattern: `[)\]}]`},
	{Name: "Punct", Pattern: `::|=>|->|==|!=|<=|>=|&&|\|\||\.\.=|\.\.|[!#$%&*+,\-./:;<=>?@^|~]`},
})

var (
	symComment    = sourceLexer.Symbols()["Comment"]
	symWhitespace = sourceLexer.Symbols()["Whitespace"]
	symRawString  = sourceLexer.Symbols()["RawString"]
	symString     = sourceLexer.Symbols()["String"]
	symChar       = sourceLexer.Symbols()["Char"]
	symLifetime   = sourceLexer.Symbols()["Lifetime"]
	symNumber     = sourceLexer.Symbols()["Number"]
	symIdent      = sourceLexer.Symbols()["Ident"]
	symOpen       = sourceLexer.Symbols()["Open"]
	symClose      = sourceLexer.Symbols()["Close"]
	symPunct      = sourceLexer.Symbols()["Punct"]
)

// Lex tokenizes src into a token tree. Brackets must balance; comments and
// whitespace are dropped. The filename is recorded in every position.
func Lex(filename, src string) (Stream, error) {
	lex, err := sourceLexer.LexString(filename, src)
	if err != nil {
		return nil, &LexError{Pos: Pos{Filename: filename}, Err: err}
	}

	// frame tracks a group that has been opened but not yet closed.
	type frame struct {
		group *Group
		trees Stream
	}
	var stack []*frame
	var top Stream

	push := func(t Tree) {
		if len(stack) > 0 {
			f := stack[len(stack)-1]
			f.trees = append(f.trees, t)
			return
		}
		top = append(top, t)
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			var le *lexer.Error
			if errors.As(err, &le) {
				return nil, &LexError{Pos: fromLexer(le.Pos), Err: errors.New(le.Msg)}
			}
			return nil, &LexError{Pos: Pos{Filename: filename}, Err: err}
		}
		if tok.EOF() {
			if len(stack) > 0 {
				g := stack[len(stack)-1].group
				return nil, &LexError{Pos: g.Open, Err: fmt.Errorf("unclosed %q", g.Delim.Open())}
			}
			return top, nil
		}

		pos := fromLexer(tok.Pos)
		switch tok.Type {
		case symComment, symWhitespace:
			continue
		case symIdent:
			push(&Ident{Name: tok.Value, Pos: pos})
		case symPunct:
			push(&Punct{Text: tok.Value, Pos: pos})
		case symString, symRawString:
			push(&Literal{Kind: LitString, Text: tok.Value, Pos: pos})
		case symChar:
			push(&Literal{Kind: LitChar, Text: tok.Value, Pos: pos})
		case symNumber:
			push(&Literal{Kind: LitNumber, Text: tok.Value, Pos: pos})
		case symLifetime:
			push(&Literal{Kind: LitOther, Text: tok.Value, Pos: pos})
		case symOpen:
			stack = append(stack, &frame{group: &Group{Delim: delimOf(tok.Value), Open: pos}})
		case symClose:
			d := delimOf(tok.Value)
			if len(stack) == 0 {
				return nil, &LexError{Pos: pos, Err: fmt.Errorf("unexpected %q", tok.Value)}
			}
			f := stack[len(stack)-1]
			if f.group.Delim != d {
				return nil, &LexError{Pos: pos, Err: fmt.Errorf("mismatched %q, expecting %q opened at %v",
					tok.Value, f.group.Delim.Close(), f.group.Open)}
			}
			stack = stack[:len(stack)-1]
			f.group.Trees = f.trees
			f.group.Close = pos
			push(f.group)
		default:
			return nil, &LexError{Pos: pos, Err: fmt.Errorf("unexpected token %q", tok.Value)}
		}
	}
}

// LexReader reads all of r and tokenizes it. See Lex.
func LexReader(filename string, r io.Reader) (Stream, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return nil, err
	}
	return Lex(filename, b.String())
}

// MustLex is like Lex but panics on error. It is meant for package-level
// defaults and tests.
func MustLex(src string) Stream {
	s, err := Lex("", src)
	if err != nil {
		panic(err)
	}
	return s
}

func fromLexer(p lexer.Position) Pos {
	return Pos{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func delimOf(s string) Delimiter {
	switch s {
	case "(", ")":
		return Paren
	case "{", "}":
		return Brace
	case "[", "]":
		return Bracket
	}
	return None
}
