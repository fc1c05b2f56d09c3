package fibonacci

// Logger is the structured logger used across the repository.
// Arguments are key/value pairs, so *slog.Logger satisfies it directly:
//
//	logger.Info("term computed", "index", 10, "term", 55)
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// NopLogger discards every message.
type NopLogger struct{}

func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Debug(string, ...any) {}
