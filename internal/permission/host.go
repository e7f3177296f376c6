package permission

import (
	"context"
	"errors"
	"sync"

	"github.com/phrazzld/remind-api/internal/domain"
)

// ErrPromptInProgress is returned when a second prompt is requested while
// the user has not answered the first one.
var ErrPromptInProgress = errors.New("permission prompt already in progress")

// Host is the platform that owns notification permission.
type Host interface {
	// Supported reports whether the platform can show notifications at all.
	Supported() bool

	// Permission returns the current state without side effects.
	Permission() domain.PermissionState

	// Prompt asks the user and suspends until they answer or ctx ends.
	Prompt(ctx context.Context) (domain.PermissionState, error)
}

// PromptHost is a Host whose consent prompt is answered out of band, for
// example by the page calling PUT /api/permission.
type PromptHost struct {
	mu        sync.Mutex
	supported bool
	state     domain.PermissionState
	pending   chan domain.PermissionState
}

// NewPromptHost creates a host with the given capability and initial state.
func NewPromptHost(supported bool, initial domain.PermissionState) *PromptHost {
	if initial == "" {
		initial = domain.PermissionDefault
	}
	return &PromptHost{supported: supported, state: initial}
}

// Supported implements Host.
func (h *PromptHost) Supported() bool {
	return h.supported
}

// Permission implements Host.
func (h *PromptHost) Permission() domain.PermissionState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Pending reports whether a prompt is waiting for an answer.
func (h *PromptHost) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending != nil
}

// Prompt implements Host. Only one prompt can be open at a time.
func (h *PromptHost) Prompt(ctx context.Context) (domain.PermissionState, error) {
	h.mu.Lock()
	if h.pending != nil {
		h.mu.Unlock()
		return h.Permission(), ErrPromptInProgress
	}
	answer := make(chan domain.PermissionState, 1)
	h.pending = answer
	h.mu.Unlock()

	select {
	case state := <-answer:
		return state, nil
	case <-ctx.Done():
		h.mu.Lock()
		if h.pending == answer {
			h.pending = nil
		}
		h.mu.Unlock()
		return h.Permission(), ctx.Err()
	}
}

// Respond records the user's decision and resolves any open prompt. It is
// also how a decision made outside a prompt (browser settings) reaches the
// service.
func (h *PromptHost) Respond(state domain.PermissionState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = state
	if h.pending != nil {
		h.pending <- state
		h.pending = nil
	}
}
