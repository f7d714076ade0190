package quick

import (
	"errors"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

type parser struct {
	opts Options
}

// Parse parses input as a sequence of root items. Shorthand entries are
// left in place; call Rewrite to expand them.
//
// A malformed shorthand or an empty errors block yields an *Error whose
// Cause is the underlying *ParseError. Any other failure is a *ParseError.
func Parse(input tt.Stream, opts Options) (*File, error) {
	p := &parser{opts: opts}
	f, err := tryParse(newCursor(input, endOf(input)), p.file)
	if err != nil {
		return nil, p.wrap(err)
	}
	return f, nil
}

func (p *parser) wrap(err error) error {
	var pe *ParseError
	if !errors.As(err, &pe) || !pe.Committed {
		return err
	}
	e := &Error{Pos: pe.Start, Cause: pe}
	switch pe.Construct {
	case ConstructShorthand:
		e.Msg = "invalid '" + p.opts.shorthandName() + "' macro"
	case ConstructBlock:
		e.Msg = "invalid '" + p.opts.BlockKeyword + "' block"
	default:
		e.Msg = "invalid input"
	}
	return e
}

func (p *parser) file(c *cursor) (*File, error) {
	if c.eof() {
		return nil, mismatch(c.here(), "unexpected end of input")
	}
	f := new(File)
	for !c.eof() {
		item, err := tryParse(c, p.rootItem)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

// rootItem parses an errors block, or failing that, an opaque group.
func (p *parser) rootItem(c *cursor) (RootItem, error) {
	b, err := tryParse(c, p.block)
	if err == nil {
		return b, nil
	}
	if isCommitted(err) {
		return nil, err
	}
	o, err := tryParse(c, opaque)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// opaque accepts an identifier and an optional group of any kind.
func opaque(c *cursor) (*OpaqueGroup, error) {
	name, err := tryParse(c, ident)
	if err != nil {
		return nil, err
	}
	o := &OpaqueGroup{Name: name}
	if body, err := tryParse(c, anyGroup); err == nil {
		o.Body = body
	}
	return o, nil
}

// block parses keyword { entries }. An empty body is a hard error. A body
// that is not a sequence of entries is an ordinary mismatch, so the caller
// replays the block as an opaque group.
func (p *parser) block(c *cursor) (*Block, error) {
	kw, err := tryParse(c, keyword(p.opts.BlockKeyword))
	if err != nil {
		return nil, err
	}
	body, err := tryParse(c, group(tt.Brace))
	if err != nil {
		return nil, err
	}
	if len(body.Trees) == 0 {
		return nil, commit(mismatch(body.Open, "'%s' block must contain at least one entry", kw.Name),
			ConstructBlock, kw.Pos)
	}
	entries, err := tryParse(groupCursor(body), p.entries)
	if err != nil {
		return nil, err
	}
	return &Block{Name: kw, Entries: entries}, nil
}

func (p *parser) entries(c *cursor) ([]Entry, error) {
	var out []Entry
	for !c.eof() {
		e, err := tryParse(c, p.entry)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// entry tries the shorthand first and the canonical form second.
func (p *parser) entry(c *cursor) (Entry, error) {
	s, err := tryParse(c, p.shorthand)
	if err == nil {
		return s, nil
	}
	if isCommitted(err) {
		return nil, err
	}
	ce, err := tryParse(c, canonical)
	if err != nil {
		return nil, err
	}
	return ce, nil
}

// canonical parses Name (params) { body } or Name { body }.
func canonical(c *cursor) (*CanonicalEntry, error) {
	name, err := tryParse(c, ident)
	if err != nil {
		return nil, err
	}
	if params, err := tryParse(c, group(tt.Paren)); err == nil {
		body, err := tryParse(c, group(tt.Brace))
		if err != nil {
			return nil, err
		}
		return &CanonicalEntry{Name: name, Params: params, Body: body}, nil
	}
	body, err := tryParse(c, group(tt.Brace))
	if err != nil {
		return nil, mismatch(c.here(), "expected parameters or body after '%s', found %s", name.Name, c.describe())
	}
	return &CanonicalEntry{Name: name, Body: body}, nil
}

// shorthand parses keyword marker ( Name, "desc" [, (args)] [,] ).
// Everything after the marker is committed.
func (p *parser) shorthand(c *cursor) (*ShorthandEntry, error) {
	kw, err := tryParse(c, keyword(p.opts.ShorthandKeyword))
	if err != nil {
		return nil, err
	}
	if _, err := tryParse(c, punct(p.opts.ShorthandMarker)); err != nil {
		return nil, err
	}
	e, err := tryParse(c, shorthandBody)
	if err != nil {
		return nil, commit(err, ConstructShorthand, kw.Pos)
	}
	e.Keyword = kw
	return e, nil
}

func shorthandBody(c *cursor) (*ShorthandEntry, error) {
	g, err := tryParse(c, group(tt.Paren))
	if err != nil {
		return nil, err
	}
	in := groupCursor(g)

	e := new(ShorthandEntry)
	if e.Name, err = tryParse(in, ident); err != nil {
		return nil, err
	}
	if _, err := tryParse(in, punct(",")); err != nil {
		return nil, err
	}
	if e.Description, err = tryParse(in, litStr); err != nil {
		return nil, err
	}

	// One comma may follow the description; if it introduces an argument
	// list, one more may follow that. Nothing else is accepted.
	if _, err := tryParse(in, punct(",")); err == nil {
		if args, err := tryParse(in, group(tt.Paren)); err == nil {
			if e.Args, err = tryParse(groupCursor(args), argList); err != nil {
				return nil, err
			}
			tryParse(in, punct(","))
		}
	}
	if _, err := tryParse(in, end); err != nil {
		return nil, err
	}
	return e, nil
}

// argList parses a comma-separated list of identifiers. A trailing comma
// is allowed; so is an empty list.
func argList(c *cursor) ([]*tt.Ident, error) {
	var args []*tt.Ident
	for !c.eof() {
		id, err := tryParse(c, ident)
		if err != nil {
			return nil, err
		}
		args = append(args, id)
		if c.eof() {
			break
		}
		if _, err := tryParse(c, punct(",")); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// endOf returns the position just past the last token of s.
func endOf(s tt.Stream) tt.Pos {
	if len(s) == 0 {
		return tt.Pos{}
	}
	if g, ok := s[len(s)-1].(*tt.Group); ok {
		return g.Close
	}
	return s[len(s)-1].Start()
}
