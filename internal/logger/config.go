// Package logger provides configurable logging capabilities
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds all settings for the logger.
type Config struct {
	// LogLevel specifies the minimum level to log (e.g., "debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	// LogFilePath is the path to the output log file. Use empty or "-" for stderr.
	LogFilePath string `toml:"log_file"`

	// --- Filtering Options ---

	// EnabledTags only logs messages with these tags (if non-empty).
	EnabledTags []string `toml:"enabled_tags"`
	// DisabledTags prevents logging messages with these tags. Overrides EnabledTags.
	DisabledTags []string `toml:"disabled_tags"`

	// EnabledPackages only logs messages originating from these packages (if non-empty).
	// Package name is the immediate directory name (e.g., "reconcile", "layer", "session").
	EnabledPackages []string `toml:"enabled_packages"`
	// DisabledPackages prevents logging from these packages. Overrides EnabledPackages.
	DisabledPackages []string `toml:"disabled_packages"`

	// EnabledFiles only logs messages originating from these filenames (if non-empty).
	// Filename is the base name (e.g., "reconcile.go", "session.go").
	EnabledFiles []string `toml:"enabled_files"`
	// DisabledFiles prevents logging from these filenames. Overrides EnabledFiles.
	DisabledFiles []string `toml:"disabled_files"`

	level    slog.Leveler
	tags     filter
	packages filter
	files    filter
}

// filter is an allow list and a deny list of lower-case keys. The deny list wins.
type filter struct {
	enabled  map[string]struct{}
	disabled map[string]struct{}
}

func newFilter(enabled, disabled []string) filter {
	return filter{enabled: sliceToSet(enabled), disabled: sliceToSet(disabled)}
}

// allows reports whether a record with the given key passes. A record without a
// key only fails when an allow list is set.
func (f filter) allows(key string, known bool) bool {
	if !known {
		return f.enabled == nil
	}
	key = strings.ToLower(key)
	if _, found := f.disabled[key]; found {
		return false
	}
	if f.enabled == nil {
		return true
	}
	_, found := f.enabled[key]
	return found
}

// NewConfig creates a new Config with default values
func NewConfig() Config {
	return Config{
		LogLevel:    "info",
		LogFilePath: "",
	}
}

// process parses string levels/lists into efficient internal formats.
func (c *Config) process() {
	// Default level
	c.level = slog.LevelInfo
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		c.level = slog.LevelDebug
	case "info":
		c.level = slog.LevelInfo
	case "warn", "warning":
		c.level = slog.LevelWarn
	case "error", "err":
		c.level = slog.LevelError
	}

	c.tags = newFilter(c.EnabledTags, c.DisabledTags)
	c.packages = newFilter(c.EnabledPackages, c.DisabledPackages)
	c.files = newFilter(c.EnabledFiles, c.DisabledFiles)

	if debugFilter {
		fmt.Fprintf(os.Stderr, "[CONFIG PROCESS] tags=%v packages=%v files=%v\n", c.tags, c.packages, c.files)
	}
}

// Level returns the processed slog level.
func (c *Config) Level() slog.Level {
	if c.level == nil {
		c.process()
	}
	return c.level.Level()
}

// helper function to convert slice to set
func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item != "" { // Ignore empty strings
			set[strings.ToLower(item)] = struct{}{} // Use lowercase for case-insensitive matching
		}
	}
	if len(set) == 0 {
		return nil // Use nil map if empty, simplifies checks later
	}
	return set
}
