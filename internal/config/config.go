// Package config loads and watches splitdiff configuration. Settings
// come from a YAML or TOML file, overlaid with SPLITDIFF_* environment
// variables; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds every user-facing option.
type Config struct {
	// IgnoreWhitespace passes the whitespace-insensitive flag to the
	// external diff tool.
	IgnoreWhitespace bool `yaml:"ignore_whitespace" toml:"ignore_whitespace"`

	// DiffCommand overrides the external diff tool. Empty selects the
	// built-in git invocation.
	DiffCommand string `yaml:"diff_command" toml:"diff_command"`

	// WordDiff enables intra-line word highlighting.
	WordDiff bool `yaml:"word_diff" toml:"word_diff"`

	// Wrap enables soft line-wrap in both panes.
	Wrap bool `yaml:"wrap" toml:"wrap"`

	// TabWidth is the tab expansion width in cells.
	TabWidth int `yaml:"tab_width" toml:"tab_width"`

	// DebounceMS is the resize/reload debounce interval in milliseconds.
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// LogFile receives log output; empty disables logging.
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WordDiff:   true,
		Wrap:       true,
		TabWidth:   4,
		DebounceMS: 100,
		LogLevel:   "info",
	}
}

// Load reads the config file at path (format chosen by extension),
// overlays environment variables, and validates the result. An empty
// path or missing file yields the defaults plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config file %s: unsupported extension", path)
	}
	return nil
}

// applyEnv overlays SPLITDIFF_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v, ok := envBool("SPLITDIFF_IGNORE_WHITESPACE"); ok {
		cfg.IgnoreWhitespace = v
	}
	if v, ok := os.LookupEnv("SPLITDIFF_DIFF_COMMAND"); ok {
		cfg.DiffCommand = v
	}
	if v, ok := envBool("SPLITDIFF_WORD_DIFF"); ok {
		cfg.WordDiff = v
	}
	if v, ok := envBool("SPLITDIFF_WRAP"); ok {
		cfg.Wrap = v
	}
	if v, ok := envInt("SPLITDIFF_TAB_WIDTH"); ok {
		cfg.TabWidth = v
	}
	if v, ok := envInt("SPLITDIFF_DEBOUNCE_MS"); ok {
		cfg.DebounceMS = v
	}
	if v, ok := os.LookupEnv("SPLITDIFF_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("SPLITDIFF_LOG_FILE"); ok {
		cfg.LogFile = v
	}
}

func envBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func envInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks option ranges.
func (c Config) Validate() error {
	if c.TabWidth < 1 || c.TabWidth > 16 {
		return fmt.Errorf("tab_width %d: %w", c.TabWidth, ErrInvalidOption)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms %d: %w", c.DebounceMS, ErrInvalidOption)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidOption)
	}
	return nil
}
