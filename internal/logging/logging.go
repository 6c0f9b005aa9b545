// Package logging adapts a structured slog logger to the printf-style
// interface the game service logs through.
package logging

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"
)

// Logger formats messages and forwards them to slog.
type Logger struct {
	l *slog.Logger
}

// New returns a logger writing through pterm's default logger.
func New(debug bool) *Logger {
	base := pterm.DefaultLogger
	if debug {
		base = *base.WithLevel(pterm.LogLevelDebug)
	}
	return NewWithHandler(pterm.NewSlogHandler(&base))
}

// NewWithHandler returns a logger over any slog handler.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{l: slog.New(h)}
}

// With returns a logger that adds the given key/value attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l: l.l.With(args...)}
}

func (l *Logger) Debug(format string, v ...interface{}) { l.l.Debug(fmt.Sprintf(format, v...)) }
func (l *Logger) Info(format string, v ...interface{})  { l.l.Info(fmt.Sprintf(format, v...)) }
func (l *Logger) Warn(format string, v ...interface{})  { l.l.Warn(fmt.Sprintf(format, v...)) }
func (l *Logger) Error(format string, v ...interface{}) { l.l.Error(fmt.Sprintf(format, v...)) }
