package quick

import (
	"github.com/open-cli-collective/ecq/pkg/tt"
)

// cursor is a position in a stream. Copying a cursor forks it.
type cursor struct {
	trees tt.Stream
	pos   int
	end   tt.Pos // reported when the stream runs out
}

func newCursor(trees tt.Stream, end tt.Pos) *cursor {
	return &cursor{trees: trees, end: end}
}

// groupCursor returns a cursor over the contents of g.
func groupCursor(g *tt.Group) *cursor {
	return newCursor(g.Trees, g.Close)
}

func (c *cursor) fork() *cursor {
	f := *c
	return &f
}

func (c *cursor) eof() bool { return c.pos >= len(c.trees) }

// here returns the position of the next tree, or the end position.
func (c *cursor) here() tt.Pos {
	if c.eof() {
		return c.end
	}
	return c.trees[c.pos].Start()
}

// describe names the next tree for error messages.
func (c *cursor) describe() string {
	if c.eof() {
		return "end of input"
	}
	switch t := c.trees[c.pos].(type) {
	case *tt.Group:
		return t.Delim.String() + " group"
	default:
		return "'" + t.String() + "'"
	}
}

// next consumes one tree. Only leaf rules call it, always on a fork.
func (c *cursor) next() tt.Tree {
	t := c.trees[c.pos]
	c.pos++
	return t
}

// tryParse runs rule on a fork of c and moves c past the consumed input
// only if rule succeeds. On failure c is left untouched.
func tryParse[T any](c *cursor, rule func(*cursor) (T, error)) (T, error) {
	f := c.fork()
	v, err := rule(f)
	if err != nil {
		var zero T
		return zero, err
	}
	c.pos = f.pos
	return v, nil
}

// Leaf rules. Each consumes at most one tree.

func ident(c *cursor) (*tt.Ident, error) {
	if !c.eof() {
		if id, ok := c.next().(*tt.Ident); ok {
			return id, nil
		}
		c.pos--
	}
	return nil, mismatch(c.here(), "expected identifier, found %s", c.describe())
}

func keyword(name string) func(*cursor) (*tt.Ident, error) {
	return func(c *cursor) (*tt.Ident, error) {
		id, err := ident(c)
		if err != nil {
			return nil, err
		}
		if id.Name != name {
			return nil, mismatch(id.Pos, "expected '%s', found '%s'", name, id.Name)
		}
		return id, nil
	}
}

func punct(text string) func(*cursor) (*tt.Punct, error) {
	return func(c *cursor) (*tt.Punct, error) {
		if !c.eof() {
			if p, ok := c.next().(*tt.Punct); ok && p.Text == text {
				return p, nil
			}
			c.pos--
		}
		return nil, mismatch(c.here(), "expected '%s', found %s", text, c.describe())
	}
}

func litStr(c *cursor) (*tt.Literal, error) {
	if !c.eof() {
		if lit, ok := c.next().(*tt.Literal); ok && lit.Kind == tt.LitString {
			return lit, nil
		}
		c.pos--
	}
	return nil, mismatch(c.here(), "expected string literal, found %s", c.describe())
}

func anyGroup(c *cursor) (*tt.Group, error) {
	if !c.eof() {
		if g, ok := c.next().(*tt.Group); ok {
			return g, nil
		}
		c.pos--
	}
	return nil, mismatch(c.here(), "expected group, found %s", c.describe())
}

func group(d tt.Delimiter) func(*cursor) (*tt.Group, error) {
	return func(c *cursor) (*tt.Group, error) {
		if !c.eof() {
			if g, ok := c.next().(*tt.Group); ok && g.Delim == d {
				return g, nil
			}
			c.pos--
		}
		return nil, mismatch(c.here(), "expected %s group, found %s", d, c.describe())
	}
}

// end succeeds only when c has no input left.
func end(c *cursor) (struct{}, error) {
	if c.eof() {
		return struct{}{}, nil
	}
	return struct{}{}, mismatch(c.here(), "unexpected %s", c.describe())
}
