package background

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	clock   *clock.Fake
	surface *notify.Surface
	clients *notify.Clients
	worker  *Worker
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	surface := notify.NewSurface(clk, nil, testLogger())
	clients := notify.NewClients(clk)
	w := NewWorker(cfg, surface, clients, clk, testLogger())
	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = w.Stop(ctx)
	})
	return &fixture{clock: clk, surface: surface, clients: clients, worker: w}
}

func scheduleMessage(t *testing.T, delay time.Duration) Message {
	t.Helper()
	req, err := domain.NewReminderRequest(
		domain.Task{ID: "1700000000000", Text: "water plants"},
		delay,
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return NewScheduleMessage(req, domain.NewReminderNotification(req, "http://localhost:3000"))
}

func (f *fixture) waitForTimers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.clock.Pending() == n
	}, time.Second, time.Millisecond)
}

func TestWorkerActivation(t *testing.T) {
	t.Run("immediate", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())
		assert.False(t, f.worker.Controlling())
		assert.ErrorIs(t, f.worker.Post(scheduleMessage(t, time.Second)), ErrWorkerStopped)

		f.worker.Start()
		assert.True(t, f.worker.Controlling())
		select {
		case <-f.worker.Ready():
		default:
			t.Fatal("ready channel should be closed")
		}
	})

	t.Run("delayed", func(t *testing.T) {
		f := newFixture(t, Config{ActivationDelay: 3 * time.Second, InboxSize: 4})
		f.worker.Start()
		assert.False(t, f.worker.Controlling())

		f.clock.Advance(3 * time.Second)
		assert.True(t, f.worker.Controlling())
	})
}

func TestWorkerShowsNotificationAfterDelay(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.worker.Start()

	require.NoError(t, f.worker.Post(scheduleMessage(t, 5*time.Minute)))
	f.waitForTimers(t, 1)
	assert.Equal(t, 1, f.worker.Outstanding())

	f.clock.Advance(4 * time.Minute)
	assert.Empty(t, f.surface.Visible())
	assert.Equal(t, 1, f.worker.Outstanding())

	f.clock.Advance(time.Minute)
	entry, ok := f.surface.Get("reminder-1700000000000")
	require.True(t, ok)
	assert.Equal(t, SourcePersistent, entry.Source)
	assert.Equal(t, "Todo reminder", entry.Notification.Title)
	assert.Equal(t, "Time to work on: water plants", entry.Notification.Body)
	assert.Equal(t, "http://localhost:3000", entry.Notification.Data.URL)
	assert.Equal(t, []int{200, 100, 200}, entry.Notification.Vibrate)
	assert.True(t, entry.Notification.RequireInteraction)
	assert.True(t, entry.Notification.Renotify)
	assert.Equal(t, 0, f.worker.Outstanding())
}

func TestWorkerIgnoresUnknownMessages(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.worker.Start()

	require.NoError(t, f.worker.Post(Message{Type: "SKIP_WAITING"}))
	require.NoError(t, f.worker.Post(scheduleMessage(t, time.Second)))
	f.waitForTimers(t, 1)
	assert.Equal(t, 1, f.worker.Outstanding())
}

func TestWorkerStop(t *testing.T) {
	t.Run("waits for pending notifications", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())
		f.worker.Start()
		require.NoError(t, f.worker.Post(scheduleMessage(t, time.Minute)))
		f.waitForTimers(t, 1)

		stopped := make(chan error, 1)
		go func() { stopped <- f.worker.Stop(context.Background()) }()

		select {
		case <-stopped:
			t.Fatal("stop returned with a notification pending")
		case <-time.After(20 * time.Millisecond):
		}

		f.clock.Advance(time.Minute)
		select {
		case err := <-stopped:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("stop did not return after the notification was shown")
		}
		assert.Len(t, f.surface.Visible(), 1)
	})

	t.Run("drops timers when context ends", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())
		f.worker.Start()
		require.NoError(t, f.worker.Post(scheduleMessage(t, time.Hour)))
		f.waitForTimers(t, 1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := f.worker.Stop(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, f.worker.Outstanding())
		assert.Equal(t, 0, f.clock.Pending())
		assert.False(t, f.worker.Controlling())
		assert.ErrorIs(t, f.worker.Post(scheduleMessage(t, time.Second)), ErrWorkerStopped)

		f.clock.Advance(2 * time.Hour)
		assert.Empty(t, f.surface.Visible())
	})

	t.Run("shows messages still queued at stop", func(t *testing.T) {
		const posted = 5

		for round := 0; round < 20; round++ {
			surface := notify.NewSurface(clock.Real{}, nil, testLogger())
			w := NewWorker(DefaultConfig(), surface, notify.NewClients(clock.Real{}), clock.Real{}, testLogger())
			w.Start()

			for i := 0; i < posted; i++ {
				require.NoError(t, w.Post(taskMessage(t, fmt.Sprintf("task-%d", i), 0)))
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			err := w.Stop(ctx)
			cancel()

			require.NoError(t, err, "round %d", round)
			require.Len(t, surface.Visible(), posted, "round %d: accepted messages must be shown", round)
			assert.Equal(t, 0, w.Outstanding())
		}
	})

	t.Run("queued messages before the loop runs", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())

		// Accept messages without a running loop, then stop as Stop does.
		f.worker.mu.Lock()
		f.worker.started = true
		f.worker.mu.Unlock()
		require.NoError(t, f.worker.Post(taskMessage(t, "a", time.Second)))
		require.NoError(t, f.worker.Post(taskMessage(t, "b", time.Second)))

		f.worker.mu.Lock()
		f.worker.stopped = true
		f.worker.mu.Unlock()
		f.worker.cancel()

		f.worker.loop.Add(1)
		go f.worker.run()
		f.worker.loop.Wait()

		assert.Equal(t, 2, f.worker.Outstanding())
		assert.Equal(t, 2, f.clock.Pending())

		f.clock.Advance(time.Second)
		assert.Len(t, f.surface.Visible(), 2)
		assert.Equal(t, 0, f.worker.Outstanding())
	})
}

func taskMessage(t *testing.T, taskID string, delay time.Duration) Message {
	t.Helper()
	req, err := domain.NewReminderRequest(
		domain.Task{ID: taskID, Text: "water plants"},
		delay,
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return NewScheduleMessage(req, domain.NewReminderNotification(req, "http://localhost:3000"))
}

func TestHandleClick(t *testing.T) {
	ctx := context.Background()

	t.Run("opens root when no window is open", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())
		f.worker.Start()
		require.NoError(t, f.worker.Post(scheduleMessage(t, 0)))
		f.waitForTimers(t, 1)
		f.clock.Advance(0)
		require.Len(t, f.surface.Visible(), 1)

		result := f.worker.HandleClick(ctx, "reminder-1700000000000")
		assert.Equal(t, ActionOpen, result.Action)
		assert.Equal(t, RootPath, result.URL)
		assert.Nil(t, result.Client)
		assert.Empty(t, f.surface.Visible())
	})

	t.Run("focuses first open window", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())
		first := f.clients.Register("/")
		f.clients.Register("/?filter=completed")

		result := f.worker.HandleClick(ctx, "reminder-unknown")
		assert.Equal(t, ActionFocus, result.Action)
		require.NotNil(t, result.Client)
		assert.Equal(t, first.ID, result.Client.ID)
		assert.True(t, result.Client.Focused)
	})
}
