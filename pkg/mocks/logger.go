package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/ornament/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     string
	Component string
	Message   string
}

// Logger is a mock implementation of ports.Logger that records every message.
// Loggers returned by WithComponent share the parent's record.
type Logger struct {
	component string
	shared    *logRecord
}

type logRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new recording Logger.
func NewLogger() *Logger {
	return &Logger{shared: &logRecord{}}
}

func (m *Logger) record(level, msg string, args ...interface{}) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	m.shared.entries = append(m.shared.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.record("debug", msg, args...) }
func (m *Logger) Info(msg string, args ...interface{})  { m.record("info", msg, args...) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.record("warn", msg, args...) }
func (m *Logger) Error(msg string, args ...interface{}) { m.record("error", msg, args...) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, shared: m.shared}
}

// Entries returns a copy of all recorded entries.
func (m *Logger) Entries() []LogEntry {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	return append([]LogEntry(nil), m.shared.entries...)
}

// Has reports whether a message at level containing substr was logged.
func (m *Logger) Has(level, substr string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ ports.Logger = (*Logger)(nil)
