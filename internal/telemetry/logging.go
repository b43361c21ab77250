// Package telemetry configures the process-wide slog logger.
package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables read by Setup.
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// Options controls logger construction. Zero values fall back to the
// environment.
type Options struct {
	// Verbose forces debug level regardless of LOG_LEVEL.
	Verbose bool
	// Format is "json" or "text". Empty reads LOG_FORMAT, then "text".
	Format string
	// Writer receives log records. Defaults to os.Stderr.
	Writer io.Writer
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog.Level.
// Anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Level returns the level selected by LOG_LEVEL.
func Level() slog.Level {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

// NewLogger builds a logger without touching the global default.
func NewLogger(opts Options) *slog.Logger {
	level := Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	format := opts.Format
	if format == "" {
		format = os.Getenv(EnvLogFormat)
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(handler)
}

// Setup builds a logger and installs it as slog's default.
func Setup(opts Options) *slog.Logger {
	logger := NewLogger(opts)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
