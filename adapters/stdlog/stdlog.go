// Package stdlog adapts the Go standard library logger to the
// tokengate.Logger interface.
package stdlog

import (
	"log"
)

// Logger implements tokengate.Logger using the standard library log package.
type Logger struct {
	logger *log.Logger
}

// New creates a Logger. If nil is passed, uses the default logger.
func New(l *log.Logger) *Logger {
	if l == nil {
		l = log.Default()
	}
	return &Logger{logger: l}
}

// Debugf logs a debug-level message (Printf with a level prefix).
func (s *Logger) Debugf(format string, args ...interface{}) {
	s.logger.Printf("[DEBUG] "+format, args...)
}

// Errorf logs an error-level message.
func (s *Logger) Errorf(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}
