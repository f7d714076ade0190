// Package check provides the check command.
package check

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/ecq/internal/config"
	"github.com/open-cli-collective/ecq/internal/source"
	"github.com/open-cli-collective/ecq/internal/view"
	"github.com/open-cli-collective/ecq/pkg/quick"
)

type checkOptions struct {
	lang       string
	noColor    bool
	configPath string
	stdout     io.Writer
}

// NewCmdCheck creates the check command.
func NewCmdCheck() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Check that files parse",
		Long: `Parse every file without writing anything. Each file is reported as
passing or failing; suspicious but valid input such as a repeated argument
name is logged as a warning.

The command fails if any file fails.`,
		Example: `  # Check a directory
  ecq check src/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.stdout = cmd.OutOrStdout()
			return runCheck(args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.lang, "lang", "", "Fenced block language to check in Markdown (default from config)")

	return cmd
}

func runCheck(paths []string, opts *checkOptions) error {
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

	files, err := source.Collect(paths)
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.FormatPretty, opts.noColor)
	renderer.SetWriter(opts.stdout)

	failed := 0
	for _, name := range files {
		if err := checkFile(name, opts.lang, qopts); err != nil {
			renderer.Error(err.Error())
			failed++
			continue
		}
		renderer.Success(name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func checkFile(name, lang string, qopts quick.Options) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	units, err := source.Units(name, data, lang)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		log.Printf("WARN: %s: no ```%s blocks", name, lang)
	}
	for _, u := range units {
		f, err := u.Parse(qopts)
		if err != nil {
			return err
		}
		for _, w := range quick.Lint(f) {
			log.Printf("WARN: %v", w)
		}
	}
	return nil
}
