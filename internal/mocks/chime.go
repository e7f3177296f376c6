package mocks

import (
	"context"
	"sync"
)

// MockChime implements channel.Chime for testing
type MockChime struct {
	// Err is returned by every Play call
	Err error

	mu    sync.Mutex
	plays int
}

// Play implements channel.Chime
func (m *MockChime) Play(ctx context.Context) error {
	m.mu.Lock()
	m.plays++
	m.mu.Unlock()
	return m.Err
}

// Plays returns the number of Play calls.
func (m *MockChime) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}
