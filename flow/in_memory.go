package flow

import (
	"sync"

	"github.com/hupe1980/teamflow/core"
)

// InMemoryLog is a volatile core.EventLog storing events in an append slice.
// It is safe for concurrent access and best suited for tests or ephemeral
// runs. Appends are strictly ordered, so a read always sees every event added
// before it.
type InMemoryLog struct {
	mu     sync.RWMutex
	events []core.Event
}

// NewInMemoryLog constructs an empty in-memory event log.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

// AddEvents appends events in the order given.
func (l *InMemoryLog) AddEvents(events []core.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

// GetEvents returns matching events: chronological when no limit is set, the
// newest Limit matches first otherwise.
func (l *InMemoryLog) GetEvents(filter core.EventFilter) ([]core.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []core.Event
	for _, ev := range l.events {
		if filter.Matches(ev) {
			matched = append(matched, ev)
		}
	}
	if filter.Limit <= 0 {
		return matched, nil
	}

	n := filter.Limit
	if n > len(matched) {
		n = len(matched)
	}
	out := make([]core.Event, 0, n)
	for i := len(matched) - 1; i >= len(matched)-n; i-- {
		out = append(out, matched[i])
	}
	return out, nil
}

// Len returns the number of stored events.
func (l *InMemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
