package mocks

import (
	"sync"

	"github.com/user/ornament/pkg/ports"
)

// EventSource is a mock implementation of ports.EventSource fed by Push.
type EventSource struct {
	mu      sync.Mutex
	pending []ports.Event
}

// NewEventSource creates an empty event source.
func NewEventSource(events ...ports.Event) *EventSource {
	return &EventSource{pending: events}
}

// Push queues events for later polling.
func (m *EventSource) Push(events ...ports.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, events...)
}

func (m *EventSource) PollEvent() (ports.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return ports.Event{}, false
	}
	ev := m.pending[0]
	m.pending = m.pending[1:]
	return ev, true
}

var _ ports.EventSource = (*EventSource)(nil)
