// Package config provides configuration management for ecq.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/ecq/pkg/quick"
	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Config holds the ecq configuration.
type Config struct {
	BlockKeyword     string `yaml:"block_keyword"`
	ShorthandKeyword string `yaml:"shorthand_keyword"`
	ShorthandMarker  string `yaml:"shorthand_marker"`
	ParamType        string `yaml:"param_type"`
	Expander         string `yaml:"expander"`
	MarkdownLang     string `yaml:"markdown_lang,omitempty"`
	OutputFormat     string `yaml:"output_format,omitempty"`
}

// Field describes one configuration value and the environment variable
// that overrides it.
type Field struct {
	Key    string
	EnvVar string
	Value  func(*Config) *string
}

// Fields lists every configuration value in file order.
var Fields = []Field{
	{"block_keyword", "ECQ_BLOCK_KEYWORD", func(c *Config) *string { return &c.BlockKeyword }},
	{"shorthand_keyword", "ECQ_SHORTHAND_KEYWORD", func(c *Config) *string { return &c.ShorthandKeyword }},
	{"shorthand_marker", "ECQ_SHORTHAND_MARKER", func(c *Config) *string { return &c.ShorthandMarker }},
	{"param_type", "ECQ_PARAM_TYPE", func(c *Config) *string { return &c.ParamType }},
	{"expander", "ECQ_EXPANDER", func(c *Config) *string { return &c.Expander }},
	{"markdown_lang", "ECQ_MARKDOWN_LANG", func(c *Config) *string { return &c.MarkdownLang }},
	{"output_format", "ECQ_OUTPUT_FORMAT", func(c *Config) *string { return &c.OutputFormat }},
}

// Default returns the error_chain configuration.
func Default() *Config {
	return &Config{
		BlockKeyword:     "errors",
		ShorthandKeyword: "quick",
		ShorthandMarker:  "!",
		ParamType:        "String",
		Expander:         "::error_chain::error_chain",
		MarkdownLang:     "ecq",
		OutputFormat:     "pretty",
	}
}

// Validate checks that every value lexes to what the grammar expects.
func (c *Config) Validate() error {
	if err := isIdent("block_keyword", c.BlockKeyword); err != nil {
		return err
	}
	if err := isIdent("shorthand_keyword", c.ShorthandKeyword); err != nil {
		return err
	}

	marker, err := lex("shorthand_marker", c.ShorthandMarker)
	if err != nil {
		return err
	}
	if len(marker) != 1 {
		return errors.New("shorthand_marker must be a single punctuation token")
	}
	if _, ok := marker[0].(*tt.Punct); !ok {
		return errors.New("shorthand_marker must be a single punctuation token")
	}

	if _, err := lex("param_type", c.ParamType); err != nil {
		return err
	}

	path, err := lex("expander", c.Expander)
	if err != nil {
		return err
	}
	for _, t := range path {
		switch t := t.(type) {
		case *tt.Ident:
		case *tt.Punct:
			if t.Text != "::" {
				return fmt.Errorf("expander must be a path, found %q", t.Text)
			}
		default:
			return fmt.Errorf("expander must be a path, found %q", t.String())
		}
	}

	return nil
}

func lex(key, value string) (tt.Stream, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	s, err := tt.Lex(key, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func isIdent(key, value string) error {
	s, err := lex(key, value)
	if err != nil {
		return err
	}
	if _, ok := s[0].(*tt.Ident); !ok || len(s) != 1 {
		return fmt.Errorf("%s must be an identifier", key)
	}
	return nil
}

// Options converts the configuration into expander options. Call Validate
// first; Options only reports lexing failures.
func (c *Config) Options() (quick.Options, error) {
	paramType, err := lex("param_type", c.ParamType)
	if err != nil {
		return quick.Options{}, err
	}
	expander, err := lex("expander", c.Expander)
	if err != nil {
		return quick.Options{}, err
	}
	return quick.Options{
		BlockKeyword:     c.BlockKeyword,
		ShorthandKeyword: c.ShorthandKeyword,
		ShorthandMarker:  c.ShorthandMarker,
		ParamType:        paramType,
		Expander:         expander,
	}, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	for _, f := range Fields {
		if v := os.Getenv(f.EnvVar); v != "" {
			*f.Value(c) = v
		}
	}
}

// fillDefaults sets every empty value to its default.
func (c *Config) fillDefaults() {
	def := Default()
	for _, f := range Fields {
		if v := f.Value(c); *v == "" {
			*v = *f.Value(def)
		}
	}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ecq", "config.yml")
	}

	// Fall back to ~/.config/ecq/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ecq", "config.yml")
	}

	return filepath.Join(home, ".config", "ecq", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path. Values missing
// from the file are left empty.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file, overrides it with environment
// variables and fills the rest with defaults. A missing file is not an
// error; a malformed one is.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	cfg.fillDefaults()
	return cfg, nil
}

// Resolve loads the configuration for a command run: path, or the default
// path when empty, overridden by the environment and validated.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'ecq init' to fix)", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'ecq init' to fix)", err)
	}
	return cfg, nil
}
