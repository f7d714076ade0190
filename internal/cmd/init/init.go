// Package init provides the init command for ecq.
package init

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/ecq/internal/config"
	"github.com/open-cli-collective/ecq/internal/view"
)

type initOptions struct {
	force      bool
	noInput    bool
	configPath string
	stdout     io.Writer
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize ecq configuration",
		Long: `Initialize the ecq configuration file.

This command asks for the keywords recognized in the input, the type given
to shorthand arguments and the macro that receives the expanded output.
The configuration will be saved to ~/.config/ecq/config.yml.

The defaults match error_chain: errors { quick!(Name, "description", (args)) }
expands into ::error_chain::error_chain! with String arguments.`,
		Example: `  # Interactive setup
  ecq init

  # Write the defaults without prompting
  ecq init --no-input`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.stdout = cmd.OutOrStdout()
			return runInit(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing configuration without asking")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "Write the defaults (and environment overrides) without prompting")

	return cmd
}

func runInit(opts *initOptions) error {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !opts.force {
		if opts.noInput {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(opts.stdout, "Initialization cancelled.")
			return nil
		}
	}

	// Start from whatever is in effect now so the form is prefilled.
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		cfg = config.Default()
	}

	if !opts.noInput {
		if err := newForm(cfg).Run(); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	r := view.NewRenderer(view.FormatPretty, false)
	r.SetWriter(opts.stdout)
	r.Success("Configuration saved to " + configPath)
	r.RenderText("\nYou're all set! Try running:")
	r.RenderText("  ecq expand errors.ecq")
	r.RenderText("  ecq check .")

	return nil
}

// newForm builds the prompts for every configuration value. Each input
// is checked with the same rules as Config.Validate.
func newForm(cfg *config.Config) *huh.Form {
	check := func(set func(*config.Config, string)) func(string) error {
		return func(s string) error {
			probe := *cfg
			set(&probe, s)
			return probe.Validate()
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Block keyword").
				Description("Identifier of the block holding shorthand entries").
				Placeholder("errors").
				Value(&cfg.BlockKeyword).
				Validate(check(func(c *config.Config, s string) { c.BlockKeyword = s })),

			huh.NewInput().
				Title("Shorthand keyword").
				Description("Identifier that starts a shorthand entry").
				Placeholder("quick").
				Value(&cfg.ShorthandKeyword).
				Validate(check(func(c *config.Config, s string) { c.ShorthandKeyword = s })),

			huh.NewInput().
				Title("Shorthand marker").
				Description("Punctuation between the keyword and its arguments").
				Placeholder("!").
				Value(&cfg.ShorthandMarker).
				Validate(check(func(c *config.Config, s string) { c.ShorthandMarker = s })),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Argument type").
				Description("Type given to every shorthand argument").
				Placeholder("String").
				Value(&cfg.ParamType).
				Validate(check(func(c *config.Config, s string) { c.ParamType = s })),

			huh.NewInput().
				Title("Expander").
				Description("Path of the macro that receives the output").
				Placeholder("::error_chain::error_chain").
				Value(&cfg.Expander).
				Validate(check(func(c *config.Config, s string) { c.Expander = s })),

			huh.NewInput().
				Title("Markdown language").
				Description("Info string of fenced blocks to expand in Markdown").
				Placeholder("ecq").
				Value(&cfg.MarkdownLang),

			huh.NewSelect[string]().
				Title("Output format").
				Options(huh.NewOptions(view.ValidFormats()...)...).
				Value(&cfg.OutputFormat),
		),
	)
}
