// Package logging configures stormgrab's structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config mirrors config.LoggingConfig plus the run identity that every
// log line is tagged with.
type Config struct {
	Level            string
	Structured       bool
	StructuredFormat string
	IncludePID       bool
	RunID            string
}

// Configure builds the process-wide slog.Logger and installs it as the
// default logger. Every emitted record carries run_id so log lines from
// concurrent invocations (e.g. under a process supervisor) can be
// separated downstream.
func Configure(cfg Config) *slog.Logger {
	level := parseLevel(cfg.Level)
	var handler slog.Handler
	out := io.Writer(os.Stderr)

	attrs := make([]slog.Attr, 0, 2)
	if cfg.RunID != "" {
		attrs = append(attrs, slog.String("run_id", cfg.RunID))
	}
	if cfg.IncludePID {
		attrs = append(attrs, slog.Int("pid", os.Getpid()))
	}

	if cfg.Structured && strings.ToLower(cfg.StructuredFormat) == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelForVerbosity maps the original tool's -v/--verbosity count (0..5,
// higher is chattier) onto a logging level name, preserving the original's
// verbosity semantics for users migrating their invocation scripts.
func LevelForVerbosity(v int) string {
	switch {
	case v <= 0:
		return "ERROR"
	case v == 1:
		return "WARN"
	case v == 2:
		return "INFO"
	default:
		return "DEBUG"
	}
}
