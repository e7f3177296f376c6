package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := discardLogger()

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)

		// Should not error even with no handlers
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		event, err := NewEvent("test-event", map[string]string{"key": "value"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")

		// Both handlers should still have received the event
		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
	})
}

func TestRegisterHandlerForFiltersTypes(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())

	presented := &MockEventHandler{}
	all := &MockEventHandler{}
	emitter.RegisterHandlerFor(presented, TypeNotificationPresented)
	emitter.RegisterHandler(all)

	require.NoError(t, Emit(context.Background(), emitter, TypeChannelOutcome, ChannelOutcomeRecorded{}))
	require.NoError(t, Emit(context.Background(), emitter, TypeNotificationPresented, NotificationPresented{Tag: "t"}))

	assert.Equal(t, 1, presented.HandledCount)
	assert.Equal(t, TypeNotificationPresented, presented.LastEvent.Type)
	assert.Equal(t, 2, all.HandledCount)
}
