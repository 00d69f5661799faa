// Package logging defines the structured logger contract consumed by the
// scorebook core. Repositories and the undo coordinator record operation
// start/success/failure with key-value context (game id, operation, duration).
package logging

import "log/slog"

// Logger records structured diagnostics. Arguments follow the slog convention
// of alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type slogLogger struct {
	base *slog.Logger
}

// NewSlogLogger adapts a *slog.Logger to the Logger contract.
// A nil base falls back to slog.Default().
func NewSlogLogger(base *slog.Logger) Logger {
	if base == nil {
		base = slog.Default()
	}
	return &slogLogger{base: base}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

type nopLogger struct{}

// Nop returns a logger that discards everything. Useful default for tests and
// callers that have not wired logging yet.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
