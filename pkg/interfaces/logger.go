package interfaces

import "context"

// Logger is the leveled logging contract every module logs through.
// The shape mirrors github.com/goliatone/go-logger so host
// applications can plug that package in without writing adapters.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. Implementations may return
// one shared instance or scope children per module name.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for persistent structured
// fields. Supporting providers return a new logger that applies the
// fields to every subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
