package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu            sync.RWMutex
	defaultLogger Logger = newZerologLogger(os.Stderr, LevelWarn)
)

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the process-wide default logger. Useful for routing the
// library's logs into an application's own logging setup, or for silencing
// them in tests via NewNop.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// SetLevel reinstalls the default zerolog-backed logger writing to stderr at
// the given level.
func SetLevel(level Level) {
	SetLogger(newZerologLogger(os.Stderr, level))
}

// NewZerolog returns a Logger backed by zerolog writing to w.
func NewZerolog(w io.Writer, level Level) Logger {
	return newZerologLogger(w, level)
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return newZerologLogger(io.Discard, LevelError+1)
}

// zerologLogger adapts zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

func newZerologLogger(w io.Writer, level Level) *zerologLogger {
	zlevel := zerolog.WarnLevel
	switch level {
	case LevelDebug:
		zlevel = zerolog.DebugLevel
	case LevelInfo:
		zlevel = zerolog.InfoLevel
	case LevelWarn:
		zlevel = zerolog.WarnLevel
	case LevelError:
		zlevel = zerolog.ErrorLevel
	default:
		zlevel = zerolog.Disabled
	}
	zl := zerolog.New(w).Level(zlevel).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for k, v := range pairs(fields) {
		ctx = ctx.Interface(k, v)
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for k, v := range pairs(fields) {
		switch val := v.(type) {
		case error:
			e = e.AnErr(k, val)
		case zerolog.LogObjectMarshaler:
			e = e.Object(k, val)
		default:
			e = e.Interface(k, val)
		}
	}
	e.Msg(msg)
}

// pairs converts an slog-style variadic field list into a key/value map.
// A trailing key without a value is recorded under "!BADKEY" like slog does.
func pairs(fields []any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]any, len(fields)/2+1)
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			m["!BADKEY"] = fields[i]
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		m[key] = fields[i+1]
	}
	return m
}
