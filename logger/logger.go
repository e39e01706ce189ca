package logger

// Logger is the minimal structured logging interface used by the Manager.
// Implementations accept alternating key/value pairs as variadic arguments,
// which keeps the interface small and easy to mock in tests.
type Logger interface {
	Error(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Debug(msg string, keyvals ...any)
}

// TraceIDFunc generates a correlation/trace ID string per decision log line.
// It must be cheap and safe for concurrent calls.
type TraceIDFunc func() string
