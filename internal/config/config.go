// Package config loads application settings from a TOML file with
// environment variable overrides.
//
// A missing config file is not an error: the defaults describe a fully
// working setup, and most installs never write a file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up inside the config directory.
const FileName = "glyphdesk.toml"

// Config holds the application settings.
type Config struct {
	// Storage configures backend selection and traversal.
	Storage StorageConfig `toml:"storage"`

	// Logging configures the structured logger.
	Logging LoggingConfig `toml:"logging"`
}

// StorageConfig configures the storage layer.
type StorageConfig struct {
	// DefaultBackend is the plugin id activated at startup.
	DefaultBackend string `toml:"default_backend"`

	// ScanDepth bounds recursive tree listings, in path segments.
	ScanDepth int `toml:"scan_depth"`

	// StateDir holds persisted state such as directory tokens. Empty
	// selects a directory under the user config dir.
	StateDir string `toml:"state_dir"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `toml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			DefaultBackend: "memory",
			ScanDepth:      3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, applies environment overrides, and
// validates the result. A missing file yields the defaults (still subject
// to overrides); a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults apply.
	default:
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location under the
// user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "glyphdesk", FileName), nil
}

// Validate checks settings for consistency.
func (c Config) Validate() error {
	if c.Storage.DefaultBackend == "" {
		return errors.New("storage.default_backend must not be empty")
	}
	if c.Storage.ScanDepth < 1 {
		return fmt.Errorf("storage.scan_depth must be at least 1, got %d", c.Storage.ScanDepth)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// StatePath resolves the state directory, defaulting to a subdirectory of
// the user config dir when unset.
func (c Config) StatePath() (string, error) {
	if c.Storage.StateDir != "" {
		return c.Storage.StateDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "glyphdesk", "state"), nil
}

// applyEnv overlays GLYPHDESK_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("GLYPHDESK_BACKEND"); ok {
		cfg.Storage.DefaultBackend = v
	}
	if v, ok := os.LookupEnv("GLYPHDESK_SCAN_DEPTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.ScanDepth = n
		}
	}
	if v, ok := os.LookupEnv("GLYPHDESK_STATE_DIR"); ok {
		cfg.Storage.StateDir = v
	}
	if v, ok := os.LookupEnv("GLYPHDESK_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}
