// internal/config/flags.go
package config

import (
	"fmt"
	"strings"

	"github.com/bethropolis/strata/internal/logger"
	"github.com/spf13/pflag"
)

// Flags holds values parsed from command-line flags.
// Overrides are only applied for flags that were actually set.
type Flags struct {
	set *pflag.FlagSet

	ConfigFilePath string
	LogLevel       string
	LogFilePath    string
	EnableTags     string
	DisableTags    string
	EnablePkgs     string
	DisablePkgs    string
	DebugLog       bool
	HunkThreshold  int
	MergeGap       int
	Model          string
	Color          bool
	Clipboard      bool
}

// DefineFlags registers the flags on a flag set (usually a cobra command's persistent flags).
func (f *Flags) DefineFlags(fs *pflag.FlagSet) {
	f.set = fs
	fs.StringVar(&f.ConfigFilePath, "config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	fs.StringVar(&f.LogLevel, "loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	fs.StringVar(&f.LogFilePath, "logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	fs.StringVar(&f.EnableTags, "log-tags", "", "Comma-separated list of tags to enable - Overrides config file")
	fs.StringVar(&f.DisableTags, "log-disable-tags", "", "Comma-separated list of tags to disable - Overrides config file")
	fs.StringVar(&f.EnablePkgs, "log-packages", "", "Comma-separated list of packages to enable - Overrides config file")
	fs.StringVar(&f.DisablePkgs, "log-disable-packages", "", "Comma-separated list of packages to disable - Overrides config file")
	fs.BoolVar(&f.DebugLog, "debug-log", false, "Enable verbose debug logging for the logger filtering system")
	fs.IntVar(&f.HunkThreshold, "hunk-threshold", 0, "Diff segments before hunks are coarsened - Overrides config file")
	fs.IntVar(&f.MergeGap, "merge-gap", -1, "Largest unchanged span merged while coarsening - Overrides config file")
	fs.StringVar(&f.Model, "model", "", "Model used by transformation tools - Overrides config file")
	fs.BoolVar(&f.Color, "color", true, "Colour layer text in terminal output - Overrides config file")
	fs.BoolVar(&f.Clipboard, "clipboard", false, "Copy composed output to the system clipboard - Overrides config file")
}

// ApplyOverrides updates the Config struct with values from flags *if* they were set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f.set == nil {
		return
	}
	f.set.Visit(func(fl *pflag.Flag) {
		logger.DebugTagf("config", "Applying flag override: %s", fl.Name)
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != "" {
				cfg.Logger.LogLevel = f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "log-tags":
			if tags := splitCommaList(f.EnableTags); len(tags) > 0 {
				cfg.Logger.EnabledTags = tags
			}
		case "log-disable-tags":
			if tags := splitCommaList(f.DisableTags); len(tags) > 0 {
				cfg.Logger.DisabledTags = tags
			}
		case "log-packages":
			if pkgs := splitCommaList(f.EnablePkgs); len(pkgs) > 0 {
				cfg.Logger.EnabledPackages = pkgs
			}
		case "log-disable-packages":
			if pkgs := splitCommaList(f.DisablePkgs); len(pkgs) > 0 {
				cfg.Logger.DisabledPackages = pkgs
			}
		case "debug-log":
			logger.SetDebugFilter(f.DebugLog)
		case "hunk-threshold":
			if f.HunkThreshold > 0 {
				cfg.Reconcile.HunkThreshold = f.HunkThreshold
			}
		case "merge-gap":
			if f.MergeGap >= 0 {
				cfg.Reconcile.MergeGap = f.MergeGap
			}
		case "model":
			if f.Model != "" {
				cfg.Transform.Model = f.Model
			}
		case "color":
			cfg.Render.Color = f.Color
		case "clipboard":
			cfg.Render.Clipboard = f.Clipboard
		}
	})
}

// Helper function to split comma-separated list
func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
