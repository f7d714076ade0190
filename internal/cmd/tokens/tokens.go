// Package tokens provides the tokens command.
package tokens

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/ecq/internal/config"
	"github.com/open-cli-collective/ecq/internal/source"
	"github.com/open-cli-collective/ecq/internal/view"
	"github.com/open-cli-collective/ecq/pkg/tt"
)

type tokensOptions struct {
	output     string
	noColor    bool
	configPath string
	stdin      io.Reader
	stdout     io.Writer
}

// NewCmdTokens creates the tokens command.
func NewCmdTokens() *cobra.Command {
	opts := &tokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens [path]",
		Short: "Show the token tree of a file",
		Long: `Tokenize a file (or standard input) and list every token with its
position. Groups are shown by their opening and closing delimiters, nested
tokens are indented.`,
		Example: `  # List tokens
  ecq tokens errors.ecq

  # As JSON
  ecq tokens -o json errors.ecq`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			return runTokens(args, opts)
		},
	}

	return cmd
}

func runTokens(args []string, opts *tokensOptions) error {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = cfg.OutputFormat
	}
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	var units []source.Unit
	if len(args) == 0 {
		s, err := tt.LexReader("<stdin>", opts.stdin)
		if err != nil {
			return err
		}
		units = []source.Unit{{Name: "<stdin>", Line: 1, Stream: s}}
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if units, err = source.Units(args[0], data, cfg.MarkdownLang); err != nil {
			return err
		}
	}

	var rows [][]string
	for _, u := range units {
		rows = appendRows(rows, u.Stream, 0)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)
	renderer.RenderTable([]string{"KIND", "POS", "TEXT"}, rows)
	return nil
}

func appendRows(rows [][]string, s tt.Stream, depth int) [][]string {
	indent := strings.Repeat("  ", depth)
	for _, t := range s {
		switch t := t.(type) {
		case *tt.Group:
			rows = append(rows, []string{"open", posString(t.Open), indent + t.Delim.Open()})
			rows = appendRows(rows, t.Trees, depth+1)
			rows = append(rows, []string{"close", posString(t.Close), indent + t.Delim.Close()})
		case *tt.Ident:
			rows = append(rows, []string{"ident", posString(t.Pos), indent + t.Name})
		case *tt.Punct:
			rows = append(rows, []string{"punct", posString(t.Pos), indent + t.Text})
		case *tt.Literal:
			rows = append(rows, []string{t.Kind.String(), posString(t.Pos), indent + t.Text})
		default:
			panic(fmt.Sprintf("tokens: unknown tree %T", t))
		}
	}
	return rows
}

// posString drops the file name, which is the same for every row.
func posString(p tt.Pos) string {
	p.Filename = ""
	return p.String()
}
