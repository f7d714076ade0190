package quick

import (
	"fmt"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Serialize renders f as an invocation of the configured expander:
//
//	::error_chain::error_chain! { items... }
//
// f must have been rewritten; a remaining shorthand entry panics with
// ErrUnconverted.
func Serialize(f *File, opts Options) tt.Stream {
	var items tt.Stream
	for _, item := range f.Items {
		items = append(items, serializeItem(item)...)
	}
	pos := tt.Pos{}
	if len(items) > 0 {
		pos = items[0].Start()
	}
	out := opts.Expander.At(pos)
	out = append(out, tt.NewPunct(invokeMarker, pos), tt.NewGroup(tt.Brace, pos, items...))
	return out
}

func serializeItem(item RootItem) tt.Stream {
	switch item := item.(type) {
	case *OpaqueGroup:
		out := tt.Stream{item.Name}
		if item.Body != nil {
			out = append(out, item.Body)
		}
		return out
	case *Block:
		var entries tt.Stream
		for _, e := range item.Entries {
			entries = append(entries, serializeEntry(e)...)
		}
		return tt.Stream{item.Name, tt.NewGroup(tt.Brace, item.Name.Pos, entries...)}
	}
	panic(fmt.Sprintf("quick: unknown root item %T", item))
}

func serializeEntry(e Entry) tt.Stream {
	switch e := e.(type) {
	case *CanonicalEntry:
		out := tt.Stream{e.Name}
		if e.Params != nil {
			out = append(out, e.Params)
		}
		return append(out, e.Body)
	case *ShorthandEntry:
		panic(ErrUnconverted)
	}
	panic(fmt.Sprintf("quick: unknown entry %T", e))
}

// Expand parses input, rewrites every shorthand entry and serializes the
// result. See Parse for the errors it returns.
func Expand(input tt.Stream, opts Options) (tt.Stream, error) {
	f, err := Parse(input, opts)
	if err != nil {
		return nil, err
	}
	return Serialize(Rewrite(f, opts), opts), nil
}
