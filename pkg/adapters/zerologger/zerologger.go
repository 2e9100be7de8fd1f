// Package zerologger adapts zerolog structured JSON output to the engine's
// logger port, for hosts that collect module logs as machine-readable lines.
package zerologger

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/user/replaycap/pkg/ports"
)

// Logger writes one JSON object per message. The component name travels as
// a structured field instead of a text prefix.
type Logger struct {
	zl zerolog.Logger
}

// New creates a JSON logger writing to w at the given level.
func New(w io.Writer, level ports.LogLevel) *Logger {
	zl := zerolog.New(w).Level(zeroLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.zl.Debug().Msg(format(msg, args...))
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msg(format(msg, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Msg(format(msg, args...))
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msg(format(msg, args...))
}

// WithComponent returns a logger that tags every message with the component.
func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func zeroLevel(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LevelDebug:
		return zerolog.DebugLevel
	case ports.LevelInfo:
		return zerolog.InfoLevel
	case ports.LevelWarn:
		return zerolog.WarnLevel
	case ports.LevelError:
		return zerolog.ErrorLevel
	case ports.LevelQuiet:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func format(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
