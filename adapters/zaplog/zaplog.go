// Package zaplog adapts a zap logger to the tokengate.Logger interface.
package zaplog

import (
	"go.uber.org/zap"
)

// Logger implements tokengate.Logger using a zap.SugaredLogger internally.
type Logger struct {
	logger *zap.SugaredLogger
}

// New creates a Logger from a zap.Logger. A nil logger falls back to
// zap.NewNop(), which discards all messages.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{logger: l.Sugar()}
}

// Debugf logs a debug-level message with formatting.
func (z *Logger) Debugf(format string, args ...interface{}) {
	z.logger.Debugf(format, args...)
}

// Errorf logs an error-level message with formatting.
func (z *Logger) Errorf(format string, args ...interface{}) {
	z.logger.Errorf(format, args...)
}
