package events

import (
	"context"
	"log/slog"
	"sync"
)

// subscription pairs a handler with the event types it wants. An empty type
// set receives every event.
type subscription struct {
	handler EventHandler
	types   map[string]struct{}
}

func (s subscription) wants(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// InMemoryEventEmitter dispatches events synchronously to handlers
// registered in memory.
type InMemoryEventEmitter struct {
	subs   []subscription
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler subscribes handler to every event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.RegisterHandlerFor(handler)
}

// RegisterHandlerFor subscribes handler to the given event types only.
func (e *InMemoryEventEmitter) RegisterHandlerFor(handler EventHandler, types ...string) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, sub)
	e.logger.Debug("registered event handler", "handler_count", len(e.subs), "types", types)
}

// EmitEvent publishes the event to every interested handler. A failing
// handler does not stop delivery to the others; the first error is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	subs := make([]subscription, 0, len(e.subs))
	for _, s := range e.subs {
		if s.wants(event.Type) {
			subs = append(subs, s)
		}
	}
	e.mu.RUnlock()

	if len(subs) == 0 {
		e.logger.Debug("no handlers for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var firstErr error
	for i, s := range subs {
		if err := s.handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
