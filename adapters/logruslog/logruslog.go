// Package logruslog adapts a logrus logger to the tokengate.Logger
// interface.
package logruslog

import (
	"github.com/sirupsen/logrus"
)

// Logger implements tokengate.Logger using logrus.
type Logger struct {
	logger *logrus.Entry
}

// New creates a Logger. If nil is passed, uses a fresh standard logger.
func New(l *logrus.Logger) *Logger {
	if l == nil {
		l = logrus.New()
	}
	return &Logger{logger: logrus.NewEntry(l)}
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}
