// Package config loads the optional YAML configuration file of Servo.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"src.servo.sh/pkg/env"
	"src.servo.sh/pkg/fsutil"
)

// Values of the numeric key.
const (
	NumericNative = "native"
	NumericBC     = "bc"
)

// Values of the color key.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultMaxDepth is the default limit on nested function invocations.
const DefaultMaxDepth = 512

// Config is the parsed configuration.
type Config struct {
	// Extra directories searched by <import NAME>, after the builtin ones.
	// Relative paths are resolved against the directory of the file.
	Reach []string `yaml:"reach"`
	// Which numeric evaluator to use.
	Numeric string `yaml:"numeric"`
	// Shell used to run the system and systemreturn builtins.
	Shell string `yaml:"shell"`
	// File to write debug logs to.
	Log string `yaml:"log"`
	// Path of the REPL history database.
	History  string `yaml:"history"`
	MaxDepth int    `yaml:"max-depth"`
	Color    string `yaml:"color"`

	// Path the configuration was loaded from; empty for the default
	// configuration.
	Path string `yaml:"-"`
}

// Default returns the configuration used when there is no configuration file.
func Default() *Config {
	return &Config{
		Numeric:  NumericNative,
		Shell:    "/bin/sh",
		MaxDepth: DefaultMaxDepth,
		Color:    ColorAuto,
	}
}

// Load parses the configuration file at path. Keys missing from the file keep
// their default values; unknown keys are errors.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	dir := filepath.Dir(path)
	for i, reach := range cfg.Reach {
		if !filepath.IsAbs(reach) {
			cfg.Reach[i] = filepath.Join(dir, reach)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Numeric {
	case NumericNative, NumericBC:
	default:
		return fmt.Errorf("numeric must be %q or %q, got %q", NumericNative, NumericBC, c.Numeric)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be %q, %q or %q, got %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max-depth must be positive, got %d", c.MaxDepth)
	}
	if c.Shell == "" {
		return errors.New("shell must not be empty")
	}
	return nil
}

// Find returns the path of the configuration file to use. A non-empty
// explicit path is always used. Otherwise $SERVO_CONFIG, ./servo.yaml and the
// servo.yaml in the user configuration directory are tried in turn. It
// returns "" when there is no configuration file.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(env.SERVO_CONFIG); p != "" {
		return p
	}
	candidates := []string{"servo.yaml"}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "servo", "servo.yaml"))
	}
	for _, p := range candidates {
		if fsutil.IsRegular(p) {
			return p
		}
	}
	return ""
}

// LoadFound is like Load, but locates the file with Find and returns the
// default configuration when there is none.
func LoadFound(explicit string) (*Config, error) {
	path := Find(explicit)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// HistoryPath returns the path of the REPL history database.
func (c *Config) HistoryPath() (string, error) {
	if c.History != "" {
		return c.History, nil
	}
	if p := os.Getenv(env.SERVO_HISTORY); p != "" {
		return p, nil
	}
	if dir := os.Getenv(env.XDG_STATE_HOME); dir != "" {
		return filepath.Join(dir, "servo", "history.db"), nil
	}
	home, err := fsutil.GetHome("")
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "servo", "history.db"), nil
}

// UseColor decides whether diagnostics should be colored, given whether the
// destination is a terminal.
func (c *Config) UseColor(isTTY bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTTY
	}
}

func configDir() (string, error) {
	if dir := os.Getenv(env.XDG_CONFIG_HOME); dir != "" {
		return dir, nil
	}
	home, err := fsutil.GetHome("")
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
