// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvLevel names the environment variable that sets the default level.
const EnvLevel = "PULSEBAR_LOG_LEVEL"

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // Defaults to stderr
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// ParseLevel accepts DEBUG, INFO, WARN, WARNING and ERROR in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// DefaultConfig returns the default logger configuration.
// The level comes from PULSEBAR_LOG_LEVEL and falls back to WARN, so the
// terminal stays quiet unless asked otherwise.
func DefaultConfig() Config {
	level := slog.LevelWarn

	if envLevel := os.Getenv(EnvLevel); envLevel != "" {
		if l, err := ParseLevel(envLevel); err == nil {
			level = l
		}
	}

	return Config{
		Level:  level,
		Format: "text",
	}
}

// OpenFile creates or appends to a log file for use while a full-screen UI
// owns the terminal. The caller closes it.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "pulsebar.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
