// Package zerologlog adapts a zerolog logger to the tokengate.Logger
// interface.
package zerologlog

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger implements tokengate.Logger using zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New creates a Logger. If nil is passed, uses zerolog's global logger.
func New(l *zerolog.Logger) *Logger {
	if l == nil {
		l = &log.Logger
	}
	return &Logger{logger: *l}
}

// Debugf logs a debug-level message.
func (z *Logger) Debugf(format string, args ...interface{}) {
	z.logger.Debug().Msgf(format, args...)
}

// Errorf logs an error-level message.
func (z *Logger) Errorf(format string, args ...interface{}) {
	z.logger.Error().Msgf(format, args...)
}
