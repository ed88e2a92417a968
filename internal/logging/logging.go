// Package logging configures the process-wide slog logger.
//
// The TUI owns the terminal, so the default sink is a log file rather than
// stdout; colorized tint output is only enabled when the sink turns out to be
// a terminal (useful when debugging with -log stderr).
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var logger *slog.Logger

// Init configures the package logger to write to the given path. The special
// values "stderr" and "stdout" select the corresponding process stream.
// Failures fall back to a discard logger; the UI must never lose its terminal
// to stray log writes.
func Init(path, level string) {
	var writer io.Writer
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	case "":
		writer = io.Discard
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			writer = io.Discard
			break
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			writer = io.Discard
			break
		}
		writer = file
	}

	handler := tint.NewHandler(writer, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(writer),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	})

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// Get returns the configured logger, initializing a stderr logger on first
// use when Init has not run (tests, one-off tooling).
func Get() *slog.Logger {
	if logger == nil {
		Init("stderr", "info")
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Debug logs at debug level on the package logger.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Info logs at info level on the package logger.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs at warn level on the package logger.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at error level on the package logger.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}
