package invoker

import (
	"context"
	"sync"

	"github.com/threadlane/delegator/internal/cryptogram"
)

// RecordedRequest captures one IssueRequest call for test verification.
type RecordedRequest struct {
	Method  string
	URI     string
	Body    interface{}
	Headers []cryptogram.Header
}

// MockClient implements JSONClient for testing. By default it echoes the
// request body back as the response; set ResponseFn to script other
// behavior. All calls are recorded in order.
type MockClient struct {
	mu       sync.Mutex
	requests []RecordedRequest

	ResponseFn func(method, uri string, body interface{}) (interface{}, error)
}

// NewMockClient creates an echoing mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// IssueRequest implements JSONClient.
func (m *MockClient) IssueRequest(_ context.Context, method, uri string, body interface{}, headers []cryptogram.Header) (interface{}, error) {
	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{Method: method, URI: uri, Body: body, Headers: headers})
	fn := m.ResponseFn
	m.mu.Unlock()

	if fn != nil {
		return fn(method, uri, body)
	}
	return body, nil
}

// Requests returns a copy of all recorded calls.
func (m *MockClient) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of IssueRequest calls so far.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
