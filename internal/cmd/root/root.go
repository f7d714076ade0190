// Package root provides the root command for the ecq CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/ecq/internal/cmd/check"
	"github.com/open-cli-collective/ecq/internal/cmd/completion"
	"github.com/open-cli-collective/ecq/internal/cmd/configcmd"
	"github.com/open-cli-collective/ecq/internal/cmd/expand"
	initcmd "github.com/open-cli-collective/ecq/internal/cmd/init"
	"github.com/open-cli-collective/ecq/internal/cmd/tokens"
	"github.com/open-cli-collective/ecq/internal/version"
)

// NewCmdRoot creates the root command for ecq.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecq",
		Short: "Expand quick!() error shorthand for error_chain",
		Long: `ecq expands the quick!() shorthand inside an errors block:

  errors { quick!(NotFound, "not found", (path)) }

becomes a canonical error_chain! entry:

  NotFound(path: String) {
      description("not found")
      display("not found: {}", path)
  }

Everything else in the input is passed through unchanged.

Get started by running: ecq init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/ecq/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: pretty, compact, json (default from config)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Set version template
	cmd.SetVersionTemplate(version.Template())

	// Subcommands
	cmd.AddCommand(expand.NewCmdExpand())
	cmd.AddCommand(check.NewCmdCheck())
	cmd.AddCommand(tokens.NewCmdTokens())
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
