// Package events defines what the forecasting, demand and restock
// components publish while they work. Delivery and storage live in
// infrastructure; components only see the Observer interface.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is one fact published by a planning component
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	// Version is the position of the event within its stream, starting at 1.
	// Events not yet appended to a store report 0.
	Version() int
}

type BaseEvent struct {
	EventType    string
	Stream       string
	EventData    interface{}
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// WithVersion returns a copy of e positioned at version within its stream
func WithVersion(e Event, version int) Event {
	return BaseEvent{
		EventType:    e.Type(),
		Stream:       e.StreamID(),
		EventData:    e.Data(),
		EventTime:    e.Timestamp(),
		EventVersion: version,
	}
}

func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: time.Now().UTC(),
	}
}

// NewStreamID returns a fresh stream id for one invocation of a component
func NewStreamID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
