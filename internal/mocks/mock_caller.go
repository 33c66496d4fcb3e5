package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alirezazamanidev/project-microservice/internal/rpc"
)

// CallRecord is one call seen by MockCaller
type CallRecord struct {
	Subject string
	Payload any
}

// MockCaller implements rpc.Caller for testing.
// Replies maps a subject to the value decoded into out; Errors maps a subject to its failure.
type MockCaller struct {
	CallFunc func(ctx context.Context, subject string, payload, out any) error
	Replies  map[string]any
	Errors   map[string]error

	mu    sync.Mutex
	calls []CallRecord
}

// NewMockCaller creates a new MockCaller with default behaviors
func NewMockCaller() *MockCaller {
	return &MockCaller{
		Replies: make(map[string]any),
		Errors:  make(map[string]error),
	}
}

// Call records the call and answers from CallFunc, Errors or Replies
func (m *MockCaller) Call(ctx context.Context, subject string, payload, out any) error {
	m.mu.Lock()
	m.calls = append(m.calls, CallRecord{Subject: subject, Payload: payload})
	m.mu.Unlock()

	if m.CallFunc != nil {
		return m.CallFunc(ctx, subject, payload, out)
	}
	if err, ok := m.Errors[subject]; ok {
		return err
	}
	reply, ok := m.Replies[subject]
	if !ok || out == nil {
		return nil
	}
	// round trip through JSON like the real transport
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Calls returns every recorded call in order
func (m *MockCaller) Calls() []CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CallRecord(nil), m.calls...)
}

// Subjects returns the subjects called in order
func (m *MockCaller) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Subject)
	}
	return out
}

// Compile-time interface compliance verification
var _ rpc.Caller = (*MockCaller)(nil)
