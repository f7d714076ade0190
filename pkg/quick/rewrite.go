package quick

import (
	"strings"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Canonical returns the canonical entry equivalent to e:
//
//	quick!(Name, "D", (a, b))
//
// becomes
//
//	Name (a: String, b: String) {
//	    description("D")
//	    display("D: {}, {}", a, b)
//	}
//
// With no arguments the parameter group is omitted and the display message
// is the description literal itself.
func (e *ShorthandEntry) Canonical(opts Options) *CanonicalEntry {
	pos := e.Name.Pos

	var params *tt.Group
	if len(e.Args) > 0 {
		var trees tt.Stream
		for i, arg := range e.Args {
			if i > 0 {
				trees = append(trees, tt.NewPunct(",", arg.Pos))
			}
			trees = append(trees, tt.NewIdent(arg.Name, arg.Pos), tt.NewPunct(":", arg.Pos))
			trees = append(trees, opts.ParamType.At(arg.Pos)...)
		}
		params = tt.NewGroup(tt.Paren, pos, trees...)
	}

	desc := e.Description
	display := tt.Stream{displayMessage(desc, len(e.Args))}
	for _, arg := range e.Args {
		display = append(display, tt.NewPunct(",", arg.Pos), tt.NewIdent(arg.Name, arg.Pos))
	}

	body := tt.NewGroup(tt.Brace, pos,
		tt.NewIdent(descriptionIdent, desc.Pos),
		tt.NewGroup(tt.Paren, desc.Pos, tt.Clone(desc)),
		tt.NewIdent(displayIdent, desc.Pos),
		tt.NewGroup(tt.Paren, desc.Pos, display...),
	)

	return &CanonicalEntry{
		Name:   tt.NewIdent(e.Name.Name, e.Name.Pos),
		Params: params,
		Body:   body,
	}
}

// displayMessage builds the format string "<desc>: {}, {}" for n arguments.
func displayMessage(desc *tt.Literal, n int) *tt.Literal {
	if n == 0 {
		return tt.Clone(desc).(*tt.Literal)
	}
	suffix := ":" + strings.Repeat(" {},", n)
	suffix = strings.TrimSuffix(suffix, ",")
	lit, err := desc.WithSuffix(suffix)
	if err != nil {
		// The grammar only accepts string literals here.
		panic(err)
	}
	return lit
}

// Rewrite replaces every shorthand entry in f with its canonical form, in
// place, and returns f. Opaque groups and canonical entries are untouched,
// so rewriting a tree without shorthand is a no-op.
func Rewrite(f *File, opts Options) *File {
	for _, item := range f.Items {
		b, ok := item.(*Block)
		if !ok {
			continue
		}
		for i, e := range b.Entries {
			if s, ok := e.(*ShorthandEntry); ok {
				b.Entries[i] = s.Canonical(opts)
			}
		}
	}
	return f
}
