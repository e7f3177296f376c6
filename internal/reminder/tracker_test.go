package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, taskID string, delay time.Duration) domain.ReminderRequest {
	t.Helper()
	req, err := domain.NewReminderRequest(task(taskID, "x"), delay, testNow)
	require.NoError(t, err)
	return req
}

func presented(t *testing.T, tag string) *events.Event {
	t.Helper()
	e, err := events.NewEvent(events.TypeNotificationPresented, events.NotificationPresented{Tag: tag, Source: "persistent"})
	require.NoError(t, err)
	return e
}

func TestTrackerLifecycle(t *testing.T) {
	clk := clock.NewFake(testNow)
	tr := NewTracker(10, clk, testLogger())

	req := newRequest(t, "1", time.Minute)
	tr.Begin(req)
	require.Len(t, tr.Pending(), 1)

	tr.Transition(req.ID, domain.StatePermissionChecked)
	tr.SetPermission(req.ID, domain.PermissionGranted)
	tr.Record(req.ID, domain.Armed(domain.ChannelForeground, ""))
	tr.Transition(req.ID, domain.StateChannelArmed)
	tr.Finish(req.ID)
	assert.Empty(t, tr.Pending())

	run, ok := tr.Get(req.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StateChannelArmed, run.State)
	assert.Equal(t, domain.PermissionGranted, run.Permission)
	assert.Len(t, run.Outcomes, 1)

	t.Run("early presentation does not deliver", func(t *testing.T) {
		require.NoError(t, tr.HandleEvent(context.Background(), presented(t, "reminder-1")))
		run, _ := tr.Get(req.ID)
		assert.Equal(t, domain.StateChannelArmed, run.State)
	})

	t.Run("other tags are ignored", func(t *testing.T) {
		clk.Advance(time.Minute)
		require.NoError(t, tr.HandleEvent(context.Background(), presented(t, "reminder-2")))
		run, _ := tr.Get(req.ID)
		assert.Equal(t, domain.StateChannelArmed, run.State)
	})

	t.Run("due presentation delivers", func(t *testing.T) {
		require.NoError(t, tr.HandleEvent(context.Background(), presented(t, "reminder-1")))
		run, _ := tr.Get(req.ID)
		assert.Equal(t, domain.StateDelivered, run.State)

		// Terminal runs do not move.
		tr.Transition(req.ID, domain.StateChannelArmed)
		run, _ = tr.Get(req.ID)
		assert.Equal(t, domain.StateDelivered, run.State)
	})
}

func TestTrackerIgnoresOtherEvents(t *testing.T) {
	tr := NewTracker(10, clock.NewFake(testNow), testLogger())
	e, err := events.NewEvent(events.TypeChannelOutcome, events.ChannelOutcomeRecorded{})
	require.NoError(t, err)
	assert.NoError(t, tr.HandleEvent(context.Background(), e))

	bad := &events.Event{Type: events.TypeNotificationPresented, Payload: []byte(`{`)}
	assert.Error(t, tr.HandleEvent(context.Background(), bad))
}

func TestTrackerHistoryIsBounded(t *testing.T) {
	tr := NewTracker(2, clock.NewFake(testNow), testLogger())

	inFlight := newRequest(t, "1", 0)
	tr.Begin(inFlight)

	var last domain.ReminderRequest
	for i := 0; i < 3; i++ {
		last = newRequest(t, "2", 0)
		tr.Begin(last)
		tr.Finish(last.ID)
	}

	recent := tr.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, last.ID, recent[0].Request.ID)
	assert.Equal(t, inFlight.ID, recent[1].Request.ID, "in-flight runs are kept")
}
