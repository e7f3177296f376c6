package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the reminder subsystem.
const (
	// TypeNotificationPresented is emitted by the notification surface each
	// time a notification becomes visible. Payload: NotificationPresented.
	TypeNotificationPresented = "notification.presented"

	// TypeChannelOutcome is emitted by the escalation policy for every
	// channel it tries. Payload: ChannelOutcomeRecorded.
	TypeChannelOutcome = "reminder.channel_outcome"
)

// Event is a notification that something happened in the reminder
// subsystem. Payloads are JSON so that emitters and handlers stay
// decoupled from each other's types.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type selects which handlers care about the event
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPresented is the payload of TypeNotificationPresented.
type NotificationPresented struct {
	Tag       string `json:"tag"`
	Source    string `json:"source"`
	Collapsed bool   `json:"collapsed"`
}

// ChannelOutcomeRecorded is the payload of TypeChannelOutcome.
type ChannelOutcomeRecorded struct {
	RequestID uuid.UUID `json:"request_id"`
	TaskID    string    `json:"task_id"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows components to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// Emit builds an event and publishes it. A nil emitter is a no-op.
func Emit(ctx context.Context, emitter EventEmitter, eventType string, payload interface{}) error {
	if emitter == nil {
		return nil
	}
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
