// Package telemetry holds the logging seam shared by server components.
package telemetry

import (
	"io"
	"log"
)

// Logger exposes the logging capabilities required by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts a function into a Logger.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger. A nil logger wraps log.Default().
func WrapLogger(logger *log.Logger) Logger {
	if logger == nil {
		logger = log.Default()
	}
	return &loggerAdapter{logger: logger}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return WrapLogger(log.New(io.Discard, "", 0))
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}
