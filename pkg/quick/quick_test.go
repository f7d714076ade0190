package quick

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

const prefix = ":: error_chain :: error_chain ! "

// expand runs the whole pipeline on src and returns the compact rendering.
func expand(t *testing.T, src string) string {
	t.Helper()
	out, err := Expand(tt.MustLex(src), DefaultOptions())
	require.NoError(t, err)
	return out.String()
}

// compact renders src the way Stream.String does, so expectations can be
// written with normal spacing.
func compact(src string) string {
	return tt.MustLex(src).String()
}

func expandErr(t *testing.T, src string) error {
	t.Helper()
	out, err := Expand(tt.MustLex(src), DefaultOptions())
	require.Error(t, err, "unexpected output: %v", out)
	return err
}

var ignorePos = cmpopts.IgnoreTypes(tt.Pos{})

func TestExpand_ZeroArguments(t *testing.T) {
	got := expand(t, `errors { quick!(Name, "D") }`)
	want := compact(`::error_chain::error_chain! {
		errors {
			Name { description("D") display("D") }
		}
	}`)
	assert.Equal(t, want, got)
}

func TestExpand_MultipleArguments(t *testing.T) {
	got := expand(t, `errors { quick!(Name, "D", (a, b)) }`)
	want := compact(`::error_chain::error_chain! {
		errors {
			Name (a: String, b: String) { description("D") display("D: {}, {}", a, b) }
		}
	}`)
	assert.Equal(t, want, got)
}

func TestExpand_TrailingCommas(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no args", `quick!(N, "D")`, `N { description("D") display("D") }`},
		{"no args, trailing comma", `quick!(N, "D",)`, `N { description("D") display("D") }`},
		{"empty arg list", `quick!(N, "D", ())`, `N { description("D") display("D") }`},
		{"empty arg list, trailing comma", `quick!(N, "D", (),)`, `N { description("D") display("D") }`},
		{"one arg", `quick!(N, "D", (a))`, `N (a: String) { description("D") display("D: {}", a) }`},
		{"one arg, inner comma", `quick!(N, "D", (a,))`, `N (a: String) { description("D") display("D: {}", a) }`},
		{"one arg, both commas", `quick!(N, "D", (a,),)`, `N (a: String) { description("D") display("D: {}", a) }`},
		{"two args, outer comma", `quick!(N, "D", (a, b),)`, `N (a: String, b: String) { description("D") display("D: {}, {}", a, b) }`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := expand(t, "errors { "+tc.input+" }")
			assert.Equal(t, compact(prefix+"{ errors { "+tc.want+" } }"), got)
		})
	}
}

func TestExpand_MalformedShorthandIsCommitted(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"missing description", `quick!(Name)`, "expected ','"},
		{"description not a string", `quick!(Name, 42)`, "expected string literal"},
		{"name not an identifier", `quick!("D", "D")`, "expected identifier"},
		{"args not separated", `quick!(Name, "D", (a b))`, "expected ','"},
		{"arg not an identifier", `quick!(Name, "D", (a, 1))`, "expected identifier"},
		{"braces instead of parens", `quick!{Name, "D"}`, "expected parenthesis group"},
		{"no group at all", `quick! Name`, "expected parenthesis group"},
		{"double trailing comma", `quick!(Name, "D", , )`, "unexpected ','"},
		{"double comma after args", `quick!(Name, "D", (a),,)`, "unexpected ','"},
		{"extra token", `quick!(Name, "D", (a) b)`, "unexpected 'b'"},
		{"bracketed args", `quick!(Name, "D", [a])`, "unexpected bracket group"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := expandErr(t, "types { A; } errors { Ok {} "+tc.input+" }")

			var e *Error
			require.True(t, errors.As(err, &e), "got %T: %v", err, err)
			assert.Equal(t, "invalid 'quick!()' macro", e.Msg)
			require.NotNil(t, e.Cause)
			assert.True(t, e.Cause.Committed)
			assert.Equal(t, ConstructShorthand, e.Cause.Construct)
			assert.Contains(t, e.Cause.Msg, tc.wantMsg)

			// Both the summary and the detail survive in the message.
			assert.Contains(t, err.Error(), "quick!()")
			assert.Contains(t, err.Error(), tc.wantMsg)
			assert.NotContains(t, err.Error(), "parameters or body")

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Same(t, e.Cause, pe)
		})
	}
}

func TestExpand_CommittedErrorPosition(t *testing.T) {
	src := "errors {\n    quick!(Name, 42)\n}"
	_, err := Expand(tt.MustLex(src), DefaultOptions())

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Pos.Line)
	assert.Equal(t, 5, e.Pos.Column)
	assert.Equal(t, 2, e.Cause.Pos.Line)
	assert.Equal(t, 18, e.Cause.Pos.Column)
	assert.Equal(t, "2:5: invalid 'quick!()' macro: 2:18: expected string literal, found '42'", err.Error())
}

func TestExpand_ShorthandKeywordWithoutMarker(t *testing.T) {
	// Without the marker, "quick" is just an identifier: a canonical entry
	// named quick is fine, anything else makes the block opaque.
	got := expand(t, `errors { quick { description("q") } }`)
	assert.Equal(t, compact(prefix+`{ errors { quick { description("q") } } }`), got)

	got = expand(t, `errors { quick Name }`)
	assert.Equal(t, compact(prefix+`{ errors { quick Name } }`), got)
}

func TestExpand_MixedBlockKeepsOrder(t *testing.T) {
	got := expand(t, `errors {
		A { description("a") }
		quick!(B, "b")
		C (x: u8) { description("c") }
		quick!(D, "d", (y))
		E {}
	}`)
	want := compact(prefix + `{ errors {
		A { description("a") }
		B { description("b") display("b") }
		C (x: u8) { description("c") }
		D (y: String) { description("d") display("d: {}", y) }
		E {}
	} }`)
	assert.Equal(t, want, got)
}

func TestExpand_EmptyBlockRejected(t *testing.T) {
	err := expandErr(t, `types { A; } errors {}`)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "invalid 'errors' block", e.Msg)
	assert.Contains(t, err.Error(), "at least one entry")
}

func TestExpand_UnknownEntryInBlockIsOpaque(t *testing.T) {
	tests := []string{
		`errors { A {} ; }`,
		`errors { A {} B }`,
		`errors { "x" }`,
		`types { A; } errors { A (x: u8) ; B {} }`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			got := expand(t, src)
			assert.Equal(t, compact(prefix+"{ "+src+" }"), got)
		})
	}

	t.Run("block is not rewritten", func(t *testing.T) {
		// The shorthand before the unknown entry is replayed as written.
		f, err := Parse(tt.MustLex(`errors { quick!(A, "a") ; }`), DefaultOptions())
		require.NoError(t, err)
		require.Len(t, f.Items, 1)
		o, ok := f.Items[0].(*OpaqueGroup)
		require.True(t, ok)
		assert.Equal(t, "errors", o.Name.Name)
		assert.Empty(t, f.Shorthands())
	})

	t.Run("committed shorthand still fails", func(t *testing.T) {
		err := expandErr(t, `errors { A {} quick!(B) ; }`)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, ConstructShorthand, e.Cause.Construct)
	})
}

func TestExpand_EmptyInput(t *testing.T) {
	_, err := Expand(nil, DefaultOptions())
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.Committed)
	assert.Contains(t, pe.Msg, "unexpected end of input")
}

func TestExpand_RootMustStartWithIdentifier(t *testing.T) {
	err := expandErr(t, `types { A; } ; errors { quick!(A, "a") }`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.Committed)
	assert.Contains(t, pe.Msg, "expected identifier, found ';'")
}

func TestExpand_RoundTripWithoutShorthand(t *testing.T) {
	inputs := []string{
		`types { Error, ErrorKind, ResultExt, Result; }`,
		`skip_msg_variant`,
		`errors ( not a block )`,
		`errors [ not, a, block ]`,
		`links { Another(other::Error, other::ErrorKind) #[cfg(unix)]; } errors { A (x: String) { display("{}", x) } }`,
		`a b c { } d ( ) e`,
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			input := tt.MustLex(src)
			out, err := Expand(input, DefaultOptions())
			require.NoError(t, err)

			require.NotEmpty(t, out)
			assert.Equal(t, strings.TrimSpace(prefix), out[:len(out)-1].String())
			body, ok := out[len(out)-1].(*tt.Group)
			require.True(t, ok)
			assert.Equal(t, tt.Brace, body.Delim)
			if diff := cmp.Diff(input, body.Trees, ignorePos); diff != "" {
				t.Errorf("body differs from input (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	opts := DefaultOptions()
	f, err := Parse(tt.MustLex(`types { A; } errors { A { description("a") } quick!(B, "b", (x)) }`), opts)
	require.NoError(t, err)

	once := Serialize(Rewrite(f, opts), opts)
	twice := Serialize(Rewrite(f, opts), opts)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second rewrite changed the tree (-once +twice):\n%s", diff)
	}
	assert.Empty(t, f.Shorthands())
}

func TestRewrite_LeavesCanonicalEntriesUntouched(t *testing.T) {
	opts := DefaultOptions()
	f, err := Parse(tt.MustLex(`errors { A (x: u8) { description("a") } quick!(B, "b") }`), opts)
	require.NoError(t, err)

	before := f.Blocks()[0].Entries[0]
	Rewrite(f, opts)
	assert.Same(t, before, f.Blocks()[0].Entries[0])
	assert.IsType(t, &CanonicalEntry{}, f.Blocks()[0].Entries[1])
}

func TestSerialize_PanicsOnShorthand(t *testing.T) {
	opts := DefaultOptions()
	f, err := Parse(tt.MustLex(`errors { quick!(A, "a") }`), opts)
	require.NoError(t, err)
	require.Len(t, f.Shorthands(), 1)

	assert.PanicsWithValue(t, ErrUnconverted, func() {
		Serialize(f, opts)
	})
}

func TestParse_ShorthandFields(t *testing.T) {
	f, err := Parse(tt.MustLex(`errors { quick!(Name, "Desc", (a, b, a)) }`), DefaultOptions())
	require.NoError(t, err)

	s := f.Shorthands()
	require.Len(t, s, 1)
	assert.Equal(t, "quick", s[0].Keyword.Name)
	assert.Equal(t, "Name", s[0].Name.Name)
	assert.Equal(t, `"Desc"`, s[0].Description.Text)
	require.Len(t, s[0].Args, 3)
	assert.Equal(t, "a", s[0].Args[2].Name)
	assert.Equal(t, `ShorthandEntry{Name: Name, Description: "Desc", Args: [a, b, a]}`, s[0].String())
}

func TestCanonical_KeepsDescriptionSpelling(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"escapes", `"tab\there"`, `display("tab\there: {}", x)`},
		{"raw", `r"C:\dir"`, `display(r"C:\dir: {}", x)`},
		{"raw with hashes", `r#"say "hi""#`, `display(r#"say "hi": {}"#, x)`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := expand(t, `errors { quick!(N, `+tc.desc+`, (x)) }`)
			assert.Contains(t, got, compact(tc.want))
			assert.Contains(t, got, compact(`description(`+tc.desc+`)`))
		})
	}
}

func TestExpand_CustomOptions(t *testing.T) {
	opts := Options{
		BlockKeyword:     "failures",
		ShorthandKeyword: "short",
		ShorthandMarker:  "#",
		ParamType:        tt.MustLex("&'static str"),
		Expander:         tt.MustLex("my_chain"),
	}
	out, err := Expand(tt.MustLex(`failures { short#(Oops, "oops", (what)) } errors { quick!(X, "x") }`), opts)
	require.NoError(t, err)
	assert.Equal(t, compact(`my_chain! {
		failures { Oops (what: &'static str) { description("oops") display("oops: {}", what) } }
		errors { quick!(X, "x") }
	}`), out.String())

	_, err = Expand(tt.MustLex(`failures { short#(Oops) }`), opts)
	assert.EqualError(t, err, "1:12: invalid 'short#()' macro: 1:23: expected ',', found end of input")
}

func TestExpand_ConcurrentCallers(t *testing.T) {
	opts := DefaultOptions()
	input := tt.MustLex(`errors { quick!(A, "a", (x, y)) B {} }`)
	want := expand(t, `errors { quick!(A, "a", (x, y)) B {} }`)

	done := make(chan string)
	for i := 0; i < 8; i++ {
		go func() {
			out, err := Expand(input, opts)
			if err != nil {
				done <- err.Error()
				return
			}
			done <- out.String()
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}

func TestLint(t *testing.T) {
	f, err := Parse(tt.MustLex(`errors {
		quick!(A, "a", (x, y, x))
		B {}
		quick!(A, "again")
	}`), DefaultOptions())
	require.NoError(t, err)

	warns := Lint(f)
	require.Len(t, warns, 2)
	assert.Equal(t, "2:25: argument x repeated in A", warns[0].String())
	assert.Equal(t, "4:10: entry A already declared at 2:10", warns[1].String())
}
