// Package log provides structured logging for go-bodyscan.
// It wraps slog: text output during development, JSON when GO_ENV=production.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	mu     sync.RWMutex
)

// ParseLevel converts "debug", "info", "warn" or "error" to a slog level.
// The empty string means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log: unknown level %q", level)
	}
}

// New builds a logger writing to w.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init installs the global logger at the given level and makes it the slog
// default. It may be called again to change the level.
func Init(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l := New(os.Stdout, lvl, os.Getenv("GO_ENV") == "production")

	mu.Lock()
	logger = l
	mu.Unlock()

	slog.SetDefault(l)
	return nil
}

// L returns the global logger, initializing it at info level if needed.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		_ = Init("info")
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Component returns a logger tagged with a component name.
func Component(name string) *slog.Logger {
	return L().With("component", name)
}
