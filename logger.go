package tokengate

// Logger is a simple interface for logging.
// Users can provide their own logger that implements this interface;
// adapters for zap, zerolog, logrus and the standard log package live
// under adapters/.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a default logger that does nothing.
// It is used when no logger is provided by the user to avoid nil panics.
type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...interface{}) {}
func (l *noopLogger) Errorf(format string, args ...interface{}) {}
