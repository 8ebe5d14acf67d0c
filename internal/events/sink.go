// Package events defines the user-action event sink used by the transform
// language's emit nodes and its live CloudEvents-backed implementation.
package events

import (
	"github.com/google/uuid"
)

// Topic identifies the destination queue for a class of events.
type Topic struct {
	QueueURL string `json:"queue_url" mapstructure:"queue_url"`
}

// EventType classifies a user-action event.
type EventType string

const (
	EventTypeSearch       EventType = "search"
	EventTypeSearchResult EventType = "search_result"
)

// Sink receives user-action events emitted during transform evaluation.
//
// Emit is fire-and-forget: implementations must not block on network I/O and
// must never surface transport errors to the caller. ownerID is nil for
// unauthenticated requests; payload is the JSON value flowing through the
// transform at the emit point; page carries arbitrary page context JSON.
type Sink interface {
	Emit(topic Topic, ownerID *string, eventType EventType, contextID uuid.UUID, payload interface{}, page interface{})
}
