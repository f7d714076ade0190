// Package expand provides the expand command.
package expand

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"rsc.io/diff"

	"github.com/open-cli-collective/ecq/internal/config"
	"github.com/open-cli-collective/ecq/internal/source"
	"github.com/open-cli-collective/ecq/internal/view"
	"github.com/open-cli-collective/ecq/pkg/quick"
	"github.com/open-cli-collective/ecq/pkg/tt"
)

type expandOptions struct {
	write      bool
	diff       bool
	lang       string
	output     string
	noColor    bool
	configPath string
	stdin      io.Reader
	stdout     io.Writer
}

// NewCmdExpand creates the expand command.
func NewCmdExpand() *cobra.Command {
	opts := &expandOptions{}

	cmd := &cobra.Command{
		Use:   "expand [path ...]",
		Short: "Expand quick!() shorthand into error_chain! input",
		Long: `Expand every quick!() entry of the errors block into a canonical entry
and wrap the result in an error_chain! invocation.

With no path, standard input is expanded. Directories are searched for
*.ecq, *.md and *.markdown files. In Markdown only the fenced blocks tagged
with the configured language (default: ecq) are expanded.`,
		Example: `  # Expand standard input
  echo 'errors { quick!(Io, "I/O error", (path)) }' | ecq expand

  # Rewrite files in place
  ecq expand -w errors.ecq docs/

  # Show what would change
  ecq expand -d README.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			return runExpand(args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write result to the source file instead of stdout")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false, "Display diffs instead of rewriting files")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Fenced block language to expand in Markdown (default from config)")

	return cmd
}

func runExpand(paths []string, opts *expandOptions) error {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}
	qopts, err := cfg.Options()
	if err != nil {
		return err
	}
	if opts.lang == "" {
		opts.lang = cfg.MarkdownLang
	}
	if opts.output == "" {
		opts.output = cfg.OutputFormat
	}
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.write && opts.diff {
		return errors.New("cannot use -w with -d")
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	if len(paths) == 0 {
		if opts.write {
			return errors.New("cannot use -w with standard input")
		}
		return expandStdin(opts.stdin, renderer, qopts)
	}

	files, err := source.Collect(paths)
	if err != nil {
		return err
	}
	for _, name := range files {
		if err := expandFile(name, opts, renderer, qopts); err != nil {
			return err
		}
	}
	return nil
}

func expandStdin(r io.Reader, renderer *view.Renderer, qopts quick.Options) error {
	s, err := tt.LexReader("<stdin>", r)
	if err != nil {
		return err
	}
	out, err := source.Unit{Name: "<stdin>", Line: 1, Stream: s}.Expand(qopts)
	if err != nil {
		return err
	}
	return renderer.RenderStream("<stdin>", out)
}

func expandFile(name string, opts *expandOptions, renderer *view.Renderer, qopts quick.Options) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	// Plain files printed to stdout honor --output; everything else is the
	// pretty form, which is what lands on disk.
	if !opts.write && !opts.diff && source.KindOf(name) == source.Plain {
		s, err := tt.Lex(name, string(data))
		if err != nil {
			return err
		}
		out, err := source.Unit{Name: name, Line: 1, Stream: s}.Expand(qopts)
		if err != nil {
			return err
		}
		return renderer.RenderStream(name, out)
	}

	out, found, err := source.Expand(name, data, opts.lang, qopts)
	if err != nil {
		return err
	}
	if found == 0 {
		log.Printf("WARN: %s: no ```%s blocks", name, opts.lang)
	}

	switch {
	case opts.diff:
		if bytes.Equal(data, out) {
			return nil
		}
		_, err := fmt.Fprintf(opts.stdout, "diff %s %s.expanded\n%s", name, name, diff.Format(string(data), string(out)))
		return err
	case opts.write:
		if bytes.Equal(data, out) {
			return nil
		}
		fi, err := os.Stat(name)
		if err != nil {
			return err
		}
		return os.WriteFile(name, out, fi.Mode().Perm())
	}
	_, err = opts.stdout.Write(out)
	return err
}
