package configcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/ecq/internal/config"
	"github.com/open-cli-collective/ecq/internal/view"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective ecq configuration and where each value comes from.`,
		Example: `  # Show current config
  ecq config show

  # As JSON
  ecq config show -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			output, _ := cmd.Flags().GetString("output")
			configPath, _ := cmd.Flags().GetString("config")
			return runShow(configPath, output, noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

type shownField struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func runShow(configPath, output string, noColor bool, w io.Writer) error {
	if err := view.ValidateFormat(output); err != nil {
		return err
	}
	if noColor {
		color.NoColor = true
	}
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	fields := make([]shownField, 0, len(config.Fields))
	for _, f := range config.Fields {
		value := *f.Value(cfg)
		source := "default"
		switch {
		case os.Getenv(f.EnvVar) != "":
			source = f.EnvVar
		case *f.Value(fileCfg) != "":
			source = "config"
		}
		fields = append(fields, shownField{Key: f.Key, Value: value, Source: source})
	}

	r := view.NewRenderer(view.Format(output), noColor)
	r.SetWriter(w)
	if r.Format() == view.FormatJSON {
		return r.RenderJSON(fields)
	}

	dim := color.New(color.Faint)
	for _, f := range fields {
		r.RenderKeyValue(fmt.Sprintf("%-17s", f.Key), fmt.Sprintf("%s  %s", f.Value, dim.Sprintf("(source: %s)", f.Source)))
	}

	fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}
	if err := cfg.Validate(); err != nil {
		r.Error("invalid config: " + err.Error())
	}

	return nil
}
