package secured

import "github.com/oarkflow/secured/logger"

// Logger is re-exported so callers need not import the logger subpackage.
type Logger = logger.Logger

// WithLogger installs a Logger on the Manager via Option
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) error {
		if l == nil {
			return nil
		}
		m.logger = l
		return nil
	}
}

// WithTraceIDFunc installs a custom trace ID generator on the manager.
func WithTraceIDFunc(f logger.TraceIDFunc) Option {
	return func(m *Manager) error {
		m.traceIDFunc = f
		return nil
	}
}
