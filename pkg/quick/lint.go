package quick

import (
	"fmt"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Warning is a suspicious but accepted construct.
type Warning struct {
	Pos tt.Pos
	Msg string
}

func (w Warning) String() string {
	return fmt.Sprintf("%v: %s", w.Pos, w.Msg)
}

// Lint reports what the grammar accepts but the expander downstream is
// likely to reject: repeated argument names within a shorthand entry and
// repeated entry names within a block. It must run before Rewrite to see
// shorthand arguments.
func Lint(f *File) []Warning {
	var warns []Warning
	for _, b := range f.Blocks() {
		seen := make(map[string]tt.Pos)
		for _, e := range b.Entries {
			name := e.EntryName()
			if prev, ok := seen[name.Name]; ok {
				warns = append(warns, Warning{
					Pos: name.Pos,
					Msg: fmt.Sprintf("entry %s already declared at %v", name.Name, prev),
				})
			} else {
				seen[name.Name] = name.Pos
			}

			s, ok := e.(*ShorthandEntry)
			if !ok {
				continue
			}
			args := make(map[string]bool)
			for _, a := range s.Args {
				if args[a.Name] {
					warns = append(warns, Warning{
						Pos: a.Pos,
						Msg: fmt.Sprintf("argument %s repeated in %s", a.Name, s.Name.Name),
					})
				}
				args[a.Name] = true
			}
		}
	}
	return warns
}
