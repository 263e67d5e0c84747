// Package logger builds the structured logger used across retroamp.
//
// The terminal UI owns the screen, so logs go to a file rather than stderr.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
	Path   string // log file; empty discards output
}

// New creates a configured slog.Logger writing to w.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Open creates a logger writing to cfg.Path. The returned close func releases
// the file. If the file cannot be opened, the logger discards everything.
func Open(cfg Config) (*slog.Logger, func()) {
	if cfg.Path == "" {
		return Discard(), func() {}
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Discard(), func() {}
	}
	return New(cfg, f), func() { _ = f.Close() }
}

// Discard returns a logger that drops all records.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel maps DEBUG, INFO, WARN, WARNING and ERROR (any case) to a level.
// Unknown values fall back to def.
func ParseLevel(s string, def slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return def
}

// DefaultConfig returns the default logger configuration.
// RETROAMP_LOG_LEVEL overrides the INFO default.
func DefaultConfig() Config {
	return Config{
		Level:  ParseLevel(os.Getenv("RETROAMP_LOG_LEVEL"), slog.LevelInfo),
		Format: "text",
	}
}
