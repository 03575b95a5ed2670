package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const tagKey = "tag" // The slog attribute key used for filtering tags

// filteringHandler wraps a base slog.Handler and drops records rejected by the
// tag, package or file filters of its Config.
type filteringHandler struct {
	baseHandler slog.Handler
	cfg         *Config
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{baseHandler: base, cfg: cfg}
}

// Enabled checks if the level is enabled by the base handler.
func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

// recordSource returns the package directory and file name a record was logged from.
func recordSource(r slog.Record) (pkg, file string) {
	if r.PC == 0 {
		return "", ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	if frame.File == "" {
		return "", ""
	}
	return filepath.Base(filepath.Dir(frame.File)), filepath.Base(frame.File)
}

func recordTag(r slog.Record) (tag string, found bool) {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag, found = strings.ToLower(a.Value.String()), true
			return false
		}
		return true
	})
	return tag, found
}

// Handle applies the filters before passing the record to the base handler.
func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil {
		return h.baseHandler.Handle(ctx, r)
	}

	pkg, file := recordSource(r)
	tag, tagged := recordTag(r)

	var reason string
	switch {
	case !h.cfg.packages.allows(pkg, pkg != ""):
		reason = "package " + pkg
	case !h.cfg.files.allows(file, file != ""):
		reason = "file " + file
	case !h.cfg.tags.allows(tag, tagged):
		reason = "tag " + tag
	}
	if debugFilter {
		if reason != "" {
			fmt.Fprintf(os.Stderr, "[FILTER] dropped %q (%s)\n", r.Message, reason)
		} else {
			fmt.Fprintf(os.Stderr, "[FILTER] passed %q (pkg=%s file=%s tag=%s)\n", r.Message, pkg, file, tag)
		}
	}
	if reason != "" {
		return nil
	}
	return h.baseHandler.Handle(ctx, r)
}

// WithAttrs returns a new handler with attributes added.
func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newFilteringHandler(h.baseHandler.WithAttrs(attrs), h.cfg)
}

// WithGroup returns a new handler with a group added.
func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return newFilteringHandler(h.baseHandler.WithGroup(name), h.cfg)
}
