package transform

import (
	"sync"

	"github.com/threadlane/delegator/internal/events"
	"github.com/threadlane/delegator/pkg/logger"
)

// State is the scratchpad shared by all transforms within one evaluation.
// Set writes, Get reads, nothing deletes. The mutex keeps the contract
// robust should sub-expressions ever run concurrently.
type State struct {
	mu     sync.Mutex
	values map[string]interface{}
}

// NewState creates an empty scratchpad. One per Evaluate call.
func NewState() *State {
	return &State{values: map[string]interface{}{}}
}

// Set stores value under name, overwriting any previous entry.
func (s *State) Set(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Get returns the value stored under name.
func (s *State) Get(name string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Context carries the ambient capabilities a transform may use: the event
// sink for EmitEvent nodes and a logger for evaluation warnings. Sink may
// be nil, in which case EmitEvent is a plain passthrough.
type Context struct {
	Sink events.Sink
	Log  logger.Logger
}

// NewContext binds a sink and logger for live evaluation.
func NewContext(sink events.Sink, log logger.Logger) *Context {
	return &Context{Sink: sink, Log: log}
}

// NoopContext returns a context with no sink and a discarding logger.
func NoopContext() *Context {
	return &Context{Log: logger.NewTestLogger()}
}
