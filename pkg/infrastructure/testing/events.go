package testing

import (
	"sync"

	"github.com/vsinha/restock/pkg/domain/events"
)

// EventRecorder is an observer that keeps every event it receives
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.Observer = (*EventRecorder)(nil)

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Observe(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// EventsOfType returns the recorded events of one type in arrival order
func (r *EventRecorder) EventsOfType(eventType string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []events.Event
	for _, e := range r.events {
		if e.Type() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// Len returns the number of recorded events
func (r *EventRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
