package sysinfo

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger receives the facade's diagnostic messages. Its methods follow the
// log/slog signature so a *slog.Logger fits through SlogAdapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps a *slog.Logger to implement Logger.
//
//	opts := sysinfo.DefaultOptions()
//	opts.Logger = sysinfo.NewSlogAdapter(slog.Default())
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a Logger adapter from a *slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *SlogAdapter) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s *SlogAdapter) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *SlogAdapter) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// LogFormat selects the slog handler used by NewLogger.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// NewLogger builds a Logger writing to w (stderr when nil) at level in the
// given format. Debug level also records source locations.
func NewLogger(w io.Writer, level slog.Level, format LogFormat) Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	var handler slog.Handler
	if format == LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &SlogAdapter{logger: slog.New(handler)}
}

// DefaultLogger logs text at Info level to stderr.
func DefaultLogger() Logger {
	return NewLogger(os.Stderr, slog.LevelInfo, LogFormatText)
}

// DebugLogger logs text at Debug level to stderr, with source locations.
func DebugLogger() Logger {
	return NewLogger(os.Stderr, slog.LevelDebug, LogFormatText)
}

// JSONLogger logs JSON records at level to w.
func JSONLogger(w io.Writer, level slog.Level) Logger {
	return NewLogger(w, level, LogFormatJSON)
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" onto slog
// levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NopLogger returns a Logger that discards everything. It is the default
// for New.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
