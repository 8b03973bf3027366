// Package xlog defines the leveled log sink the framework exposes to
// hooker modules, with a structured-logging default implementation.
package xlog

import (
	"log/slog"
	"strings"
)

// Level is a log severity.
type Level int

// Log levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Sink receives framework and module log messages.
type Sink interface {
	// Log writes one message. tag identifies the emitting module or
	// subsystem; err is optional.
	Log(level Level, tag, msg string, err error)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(level Level, tag, msg string, err error)

// Log implements Sink.
func (f SinkFunc) Log(level Level, tag, msg string, err error) {
	f(level, tag, msg, err)
}

// slogSink writes to a slog.Logger.
type slogSink struct {
	l *slog.Logger
}

// NewSlogSink creates a Sink backed by a slog.Logger. A nil logger
// uses slog.Default.
func NewSlogSink(l *slog.Logger) Sink {
	if l == nil {
		l = slog.Default()
	}
	return &slogSink{l: l}
}

// Log implements Sink.
func (s *slogSink) Log(level Level, tag, msg string, err error) {
	attrs := make([]any, 0, 4)
	if tag != "" {
		attrs = append(attrs, "tag", tag)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}

	switch level {
	case LevelDebug:
		s.l.Debug(msg, attrs...)
	case LevelWarn:
		s.l.Warn(msg, attrs...)
	case LevelError:
		s.l.Error(msg, attrs...)
	default:
		s.l.Info(msg, attrs...)
	}
}

// Nop returns a Sink that discards everything.
func Nop() Sink {
	return SinkFunc(func(Level, string, string, error) {})
}
