// Package debug provides process-wide logging using log/slog
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// logger is the global logger instance
	logger = newDiscardLogger()
	// enabled indicates if debug logging is enabled
	enabled bool
	// mu protects the logger and enabled flag
	mu sync.RWMutex
)

// Format selects the slog handler
type Format string

const (
	// FormatText writes key=value lines
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line
	FormatJSON Format = "json"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Init enables or disables debug logging to os.Stderr.
// When disabled, warnings and errors are still written.
func Init(enable bool) {
	InitWithWriter(enable, os.Stderr, FormatText)
}

// InitWithWriter configures the global logger to write to w in the given format
func InitWithWriter(enable bool, w io.Writer, format Format) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable

	level := slog.LevelWarn
	if enable {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger = slog.New(handler)
}

// SetLogger replaces the global logger
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = newDiscardLogger()
	}
	logger = l
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
