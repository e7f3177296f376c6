package mocks

import (
	"sync"

	"github.com/phrazzld/remind-api/internal/background"
)

// MockWorker implements channel.Worker for testing
type MockWorker struct {
	// PostFn allows test cases to mock the Post behavior
	PostFn func(msg background.Message) error

	// PostErr is returned by Post when no PostFn is set
	PostErr error

	mu          sync.Mutex
	controlling bool
	ready       chan struct{}
	readyOnce   sync.Once

	// Call tracking for verification
	PostCalls struct {
		mu       sync.Mutex
		Count    int
		Messages []background.Message
	}
}

// NewMockWorker creates a worker that is already controlling, or one whose
// readiness never resolves until Activate is called.
func NewMockWorker(controlling bool) *MockWorker {
	m := &MockWorker{ready: make(chan struct{})}
	if controlling {
		m.Activate()
	}
	return m
}

// Activate makes the worker controlling.
func (m *MockWorker) Activate() {
	m.mu.Lock()
	m.controlling = true
	m.mu.Unlock()
	m.readyOnce.Do(func() { close(m.ready) })
}

// Controlling implements channel.Worker
func (m *MockWorker) Controlling() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controlling
}

// Ready implements channel.Worker
func (m *MockWorker) Ready() <-chan struct{} {
	return m.ready
}

// Post implements channel.Worker
func (m *MockWorker) Post(msg background.Message) error {
	m.PostCalls.mu.Lock()
	m.PostCalls.Count++
	m.PostCalls.Messages = append(m.PostCalls.Messages, msg)
	m.PostCalls.mu.Unlock()

	if m.PostFn != nil {
		return m.PostFn(msg)
	}
	return m.PostErr
}

// Messages returns a copy of every posted message.
func (m *MockWorker) Messages() []background.Message {
	m.PostCalls.mu.Lock()
	defer m.PostCalls.mu.Unlock()

	out := make([]background.Message, len(m.PostCalls.Messages))
	copy(out, m.PostCalls.Messages)
	return out
}
