package mocks

import (
	"fmt"
	"sync"

	"github.com/user/replaycap/pkg/ports"
)

// LogEntry records one logger call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a mock implementation of ports.Logger that records every call.
// WithComponent children share the parent's record.
type Logger struct {
	rec       *logRecord
	component string
}

type logRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new recording logger.
func NewLogger() *Logger {
	return &Logger{rec: &logRecord{}}
}

func (m *Logger) log(level ports.LogLevel, msg string, args ...interface{}) {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.entries = append(m.rec.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.log(ports.LogLevelDebug, msg, args...) }
func (m *Logger) Info(msg string, args ...interface{})  { m.log(ports.LogLevelInfo, msg, args...) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.log(ports.LogLevelWarn, msg, args...) }
func (m *Logger) Error(msg string, args ...interface{}) { m.log(ports.LogLevelError, msg, args...) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{rec: m.rec, component: component}
}

// Entries returns a copy of everything logged so far.
func (m *Logger) Entries() []LogEntry {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	out := make([]LogEntry, len(m.rec.entries))
	copy(out, m.rec.entries)
	return out
}

// EntriesAt returns the recorded entries at the given level.
func (m *Logger) EntriesAt(level ports.LogLevel) []LogEntry {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	var out []LogEntry
	for _, e := range m.rec.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

var _ ports.Logger = (*Logger)(nil)
