package dto

import (
	"time"

	"github.com/vsinha/restock/pkg/domain/events"
)

// EventsQuery selects planning events by stream or by position
type EventsQuery struct {
	Stream string `form:"stream"`
	From   int    `form:"from" binding:"min=0"`
}

// EventResponse is the wire form of one planning event
type EventResponse struct {
	Type      string    `json:"type"`
	StreamID  string    `json:"stream_id"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// EventsResponse lists events; NextPosition is where a follow-up read
// without a stream should start
type EventsResponse struct {
	Events       []EventResponse `json:"events"`
	NextPosition int             `json:"next_position"`
}

func NewEventsResponse(list []events.Event, next int) *EventsResponse {
	out := make([]EventResponse, len(list))
	for i, e := range list {
		out[i] = EventResponse{
			Type:      e.Type(),
			StreamID:  e.StreamID(),
			Version:   e.Version(),
			Timestamp: e.Timestamp(),
			Data:      e.Data(),
		}
	}
	return &EventsResponse{Events: out, NextPosition: next}
}
