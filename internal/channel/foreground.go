package channel

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/notify"
)

// SourceForeground identifies notifications shown by the foreground channel.
const SourceForeground = "foreground"

// Chime plays a short audio cue.
type Chime interface {
	Play(ctx context.Context) error
}

// BellChime rings the terminal bell on a writer.
type BellChime struct {
	w       io.Writer
	enabled bool
}

// NewBellChime creates a chime. A disabled chime always reports
// domain.ErrPlaybackBlocked.
func NewBellChime(w io.Writer, enabled bool) *BellChime {
	return &BellChime{w: w, enabled: enabled}
}

// Play implements Chime.
func (b *BellChime) Play(ctx context.Context) error {
	if !b.enabled || b.w == nil {
		return domain.ErrPlaybackBlocked
	}
	_, err := io.WriteString(b.w, "\a")
	return err
}

// PermissionReader reports the current notification permission.
type PermissionReader interface {
	Query() domain.PermissionState
}

// Foreground is the in-process fallback channel. Its timers are lost when
// the process stops, so it only covers the window before a durable channel
// is confirmed.
type Foreground struct {
	clock       clock.Clock
	chime       Chime
	presenter   notify.Presenter
	alerter     notify.Alerter
	permissions PermissionReader
	origin      string
	logger      *slog.Logger

	mu     sync.Mutex
	timers map[uuid.UUID]clock.Timer
}

// NewForeground creates the fallback channel.
func NewForeground(
	clk clock.Clock,
	chime Chime,
	presenter notify.Presenter,
	alerter notify.Alerter,
	permissions PermissionReader,
	origin string,
	logger *slog.Logger,
) *Foreground {
	return &Foreground{
		clock:       clk,
		chime:       chime,
		presenter:   presenter,
		alerter:     alerter,
		permissions: permissions,
		origin:      origin,
		logger:      logger.With("component", "foreground_channel"),
		timers:      make(map[uuid.UUID]clock.Timer),
	}
}

// Arm starts the in-process timer for req. It cannot fail.
func (f *Foreground) Arm(ctx context.Context, req domain.ReminderRequest) domain.ChannelOutcome {
	f.mu.Lock()
	f.timers[req.ID] = f.clock.AfterFunc(req.Delay, func() { f.fire(req) })
	f.mu.Unlock()

	f.logger.DebugContext(ctx, "foreground reminder armed",
		"request_id", req.ID,
		"delay_ms", req.DelayMs())
	return domain.Armed(domain.ChannelForeground, "in-process timer")
}

func (f *Foreground) fire(req domain.ReminderRequest) {
	f.mu.Lock()
	delete(f.timers, req.ID)
	f.mu.Unlock()

	ctx := context.Background()

	if f.chime != nil {
		if err := f.chime.Play(ctx); err != nil {
			f.logger.Debug("chime not played", "request_id", req.ID, "error", err)
		}
	}

	if f.permissions != nil && f.permissions.Query() == domain.PermissionGranted && f.presenter != nil {
		n := domain.NewReminderNotification(req, f.origin)
		err := f.presenter.Show(ctx, SourceForeground, n)
		if err == nil {
			return
		}
		f.logger.Warn("failed to show notification, falling back to alert",
			"request_id", req.ID,
			"error", err)
	}

	if f.alerter != nil {
		f.alerter.Alert(ctx, domain.AlertMessage(req.Text))
	}
}

// Pending returns the number of armed timers that have not fired.
func (f *Foreground) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Stop drops every pending timer and returns how many were dropped.
func (f *Foreground) Stop() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	dropped := 0
	for id, t := range f.timers {
		if t.Stop() {
			dropped++
		}
		delete(f.timers, id)
	}
	if dropped > 0 {
		f.logger.Info("dropped pending foreground reminders", "count", dropped)
	}
	return dropped
}
