// Package eventbus delivers planning events to the observers that log,
// count and keep them.
package eventbus

import (
	"sync"

	"github.com/vsinha/restock/pkg/domain/events"
)

// DefaultCapacity is the number of events a store retains unless told otherwise
const DefaultCapacity = 1024

// EventStore keeps recent planning events and fans them out to subscribers
type EventStore interface {
	events.Observer
	ReadEvents(streamID string, fromVersion int) ([]events.Event, error)
	ReadAllEvents(fromPosition int) ([]events.Event, error)
	Position() int
	Subscribe(observer events.Observer, eventTypes ...string) (unsubscribe func())
}

type subscription struct {
	id       int
	observer events.Observer
	// nil means every event type
	types map[string]bool
}

// InMemoryEventStore is a bounded, versioned event log. Once capacity is
// reached the oldest event is evicted; positions keep counting from the
// first event ever appended.
type InMemoryEventStore struct {
	mutex         sync.RWMutex
	capacity      int
	streams       map[string][]events.Event
	versions      map[string]int
	allEvents     []events.Event
	evicted       int
	nextSubID     int
	subscriptions []subscription
}

// Verify interface compliance
var (
	_ EventStore      = (*InMemoryEventStore)(nil)
	_ events.Observer = (*InMemoryEventStore)(nil)
)

// NewInMemoryEventStore creates a store retaining up to capacity events.
// A capacity below 1 means DefaultCapacity.
func NewInMemoryEventStore(capacity int) *InMemoryEventStore {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &InMemoryEventStore{
		capacity: capacity,
		streams:  make(map[string][]events.Event),
		versions: make(map[string]int),
	}
}

// Observe appends the event to its stream and notifies subscribers
func (s *InMemoryEventStore) Observe(event events.Event) {
	s.mutex.Lock()
	streamID := event.StreamID()
	s.versions[streamID]++
	versioned := events.WithVersion(event, s.versions[streamID])

	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)
	if len(s.allEvents) > s.capacity {
		s.evictOldest()
	}
	subs := s.matching(versioned.Type())
	s.mutex.Unlock()

	for _, o := range subs {
		o.Observe(versioned)
	}
}

// evictOldest drops the first retained event. It is also the first event of
// its stream, so the stream loses its head.
func (s *InMemoryEventStore) evictOldest() {
	oldest := s.allEvents[0]
	s.allEvents[0] = nil
	s.allEvents = s.allEvents[1:]
	s.evicted++

	streamID := oldest.StreamID()
	stream := s.streams[streamID][1:]
	if len(stream) == 0 {
		delete(s.streams, streamID)
		delete(s.versions, streamID)
		return
	}
	s.streams[streamID] = stream
}

func (s *InMemoryEventStore) matching(eventType string) []events.Observer {
	var subs []events.Observer
	for _, sub := range s.subscriptions {
		if sub.types == nil || sub.types[eventType] {
			subs = append(subs, sub.observer)
		}
	}
	return subs
}

// ReadEvents returns the retained events of a stream from fromVersion on
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]events.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stream := s.streams[streamID]
	var out []events.Event
	for _, e := range stream {
		if e.Version() >= fromVersion {
			out = append(out, e)
		}
	}
	if out == nil {
		return []events.Event{}, nil
	}
	return out, nil
}

// ReadAllEvents returns the retained events at or after fromPosition, where
// position 0 is the first event ever appended
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]events.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	start := fromPosition - s.evicted
	if start < 0 {
		start = 0
	}
	if start >= len(s.allEvents) {
		return []events.Event{}, nil
	}

	out := make([]events.Event, len(s.allEvents)-start)
	copy(out, s.allEvents[start:])
	return out, nil
}

// Position returns the position the next appended event will take
func (s *InMemoryEventStore) Position() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.evicted + len(s.allEvents)
}

// Subscribe delivers future events of the given types to observer, no
// types meaning every event. Observers run on the appending goroutine after
// the store lock is released. The returned func cancels the subscription.
func (s *InMemoryEventStore) Subscribe(observer events.Observer, eventTypes ...string) func() {
	if observer == nil {
		return func() {}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextSubID++
	sub := subscription{id: s.nextSubID, observer: observer}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = true
		}
	}
	s.subscriptions = append(s.subscriptions, sub)

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(sub.id) })
	}
}

func (s *InMemoryEventStore) unsubscribe(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	kept := make([]subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		if sub.id != id {
			kept = append(kept, sub)
		}
	}
	s.subscriptions = kept
}
