// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/strata/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger    logger.Config   `toml:"logger"`
	Reconcile ReconcileConfig `toml:"reconcile"`
	History   HistoryConfig   `toml:"history"`
	Transform TransformConfig `toml:"transform"`
	Render    RenderConfig    `toml:"render"`
}

// ReconcileConfig tunes the diff reconciler.
type ReconcileConfig struct {
	HunkThreshold int    `toml:"hunk_threshold"`
	MergeGap      int    `toml:"merge_gap"`
	Placeholder   string `toml:"placeholder"`
}

// HistoryConfig tunes the undo/redo stack.
type HistoryConfig struct {
	MaxSnapshots int `toml:"max_snapshots"`
	DebounceMS   int `toml:"debounce_ms"`
}

// Debounce returns the debounce window as a duration.
func (h HistoryConfig) Debounce() time.Duration {
	return time.Duration(h.DebounceMS) * time.Millisecond
}

// TransformConfig configures the text-transformation collaborator.
type TransformConfig struct {
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	BaseURL   string `toml:"base_url"`
}

// RenderConfig configures terminal output.
type RenderConfig struct {
	Color     bool `toml:"color"`
	Clipboard bool `toml:"clipboard"`
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "",
		},
		Reconcile: ReconcileConfig{
			HunkThreshold: DefaultHunkThreshold,
			MergeGap:      DefaultMergeGap,
			Placeholder:   Placeholder,
		},
		History: HistoryConfig{
			MaxSnapshots: DefaultMaxHistory,
			DebounceMS:   int(DefaultDebounce / time.Millisecond),
		},
		Transform: TransformConfig{
			Model:     DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Render: RenderConfig{
			Color: true,
		},
	}
}

// loadFromFile attempts to load configuration from a TOML file on top of cfg.
// A missing file is not an error.
func loadFromFile(filePath string, cfg *Config) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		logger.DebugTagf("config", "Config file not found: %s", filePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, undecoded)
	}
	logger.DebugTagf("config", "Loaded configuration from: %s", filePath)
	return nil
}

// Decode parses TOML configuration text on top of the defaults.
func Decode(data string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.validate()
	return cfg, nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Reconcile.HunkThreshold <= 0 {
		c.Reconcile.HunkThreshold = defaults.Reconcile.HunkThreshold
	}
	if c.Reconcile.MergeGap < 0 { // Allow 0
		c.Reconcile.MergeGap = defaults.Reconcile.MergeGap
	}
	if c.Reconcile.Placeholder == "" {
		c.Reconcile.Placeholder = defaults.Reconcile.Placeholder
	}
	if c.History.MaxSnapshots <= 0 {
		c.History.MaxSnapshots = defaults.History.MaxSnapshots
	}
	if c.History.DebounceMS < 0 {
		c.History.DebounceMS = defaults.History.DebounceMS
	}
	if c.Transform.Model == "" {
		c.Transform.Model = defaults.Transform.Model
	}
	if c.Transform.APIKeyEnv == "" {
		c.Transform.APIKeyEnv = defaults.Transform.APIKeyEnv
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
}

// DefaultPath returns ~/.config/strata/config.toml, or "" if the user config
// directory is unknown.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, DefaultConfigFileName)
}

// Load orchestrates loading defaults, file, applying flags, and validation.
// An empty path falls back to DefaultPath.
func Load(configFilePath string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		effectivePath = DefaultPath()
	}

	var loadErr error
	if effectivePath != "" {
		loadErr = loadFromFile(effectivePath, cfg)
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	cfg.validate()
	return cfg, loadErr
}
