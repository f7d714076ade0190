package quick

import (
	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Options configures the grammar keywords and the generated code.
type Options struct {
	BlockKeyword     string    // errors
	ShorthandKeyword string    // quick
	ShorthandMarker  string    // !
	ParamType        tt.Stream // type given to every shorthand argument
	Expander         tt.Stream // path of the macro receiving the output
}

// Tokens emitted into every canonical entry body.
const (
	descriptionIdent = "description"
	displayIdent     = "display"
	invokeMarker     = "!"
)

// DefaultOptions returns the error_chain configuration.
func DefaultOptions() Options {
	return Options{
		BlockKeyword:     "errors",
		ShorthandKeyword: "quick",
		ShorthandMarker:  "!",
		ParamType:        tt.MustLex("String"),
		Expander:         tt.MustLex("::error_chain::error_chain"),
	}
}

// shorthandName is how diagnostics spell the shorthand, e.g. quick!().
func (o Options) shorthandName() string {
	return o.ShorthandKeyword + o.ShorthandMarker + "()"
}
