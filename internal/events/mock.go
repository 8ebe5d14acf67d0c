package events

import (
	"sync"

	"github.com/google/uuid"
)

// Emission records a single Emit call for test verification.
type Emission struct {
	Topic     Topic
	OwnerID   *string
	EventType EventType
	ContextID uuid.UUID
	Payload   interface{}
	Page      interface{}
}

// MockSink implements Sink for testing. It records all emissions in order.
type MockSink struct {
	mu        sync.Mutex
	emissions []Emission
}

// NewMockSink creates a new mock sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Emit implements Sink.
func (m *MockSink) Emit(topic Topic, ownerID *string, eventType EventType, contextID uuid.UUID, payload interface{}, page interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emissions = append(m.emissions, Emission{
		Topic:     topic,
		OwnerID:   ownerID,
		EventType: eventType,
		ContextID: contextID,
		Payload:   payload,
		Page:      page,
	})
}

// Emissions returns a copy of all recorded emissions.
func (m *MockSink) Emissions() []Emission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Emission, len(m.emissions))
	copy(out, m.emissions)
	return out
}
