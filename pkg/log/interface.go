// Package log provides a structured logging interface for SciCA's numeric
// pipeline.
//
// This package defines a minimal, slog-compatible logging interface that
// allows for flexible implementation switching while providing structured
// logging for correspondence-analysis operations. The default implementation
// is backed by zerolog.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.EstimatorKey, "CA",
//	    log.OperationKey, "fit",
//	)
//	logger.Info("decomposition finished",
//	    log.ComponentsKey, 30,
//	    log.DurationMsKey, 152,
//	)
package log

// Logger defines a structured logging interface compatible with Go's
// log/slog calling convention: a message followed by alternating key/value
// fields.
//
// The interface is implementation-agnostic; With returns a child logger
// carrying pre-populated fields.
type Logger interface {
	// Debug logs detailed diagnostic information, usually disabled in
	// production environments.
	Debug(msg string, fields ...any)

	// Info logs general operational information about the pipeline's
	// execution flow.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations that do not prevent the
	// computation from continuing.
	Warn(msg string, fields ...any)

	// Error logs failures. The error itself should be passed under the
	// "error" key so backends can render stack traces.
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields attached to every
	// subsequent message.
	With(fields ...any) Logger
}

// Level represents a logging severity level.
type Level int

// Logging levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}
