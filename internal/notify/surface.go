package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/events"
)

// Presenter renders notifications.
type Presenter interface {
	Show(ctx context.Context, source string, n domain.Notification) error
}

// Alerter shows a plain blocking alert.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// Entry is a visible notification. Presentations with the same tag
// collapse into one entry; Count says how many there were.
type Entry struct {
	Notification domain.Notification `json:"notification"`
	Source       string              `json:"source"`
	ShownAt      time.Time           `json:"shown_at"`
	Count        int                 `json:"count"`
}

// Alert is a plain alert raised when notifications are not allowed.
type Alert struct {
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raised_at"`
}

// Surface is the notification presentation surface. It collapses
// notifications that share a tag, the way a browser does.
type Surface struct {
	mu      sync.Mutex
	entries map[string]*Entry
	alerts  []Alert

	clock   clock.Clock
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewSurface creates an empty surface. emitter may be nil.
func NewSurface(clk clock.Clock, emitter events.EventEmitter, logger *slog.Logger) *Surface {
	return &Surface{
		entries: make(map[string]*Entry),
		clock:   clk,
		emitter: emitter,
		logger:  logger.With("component", "notification_surface"),
	}
}

// Show presents n. If a notification with the same tag is visible it is
// replaced instead of stacked. A presented event is emitted either way.
func (s *Surface) Show(ctx context.Context, source string, n domain.Notification) error {
	s.mu.Lock()
	entry, collapsed := s.entries[n.Tag]
	if !collapsed || n.Tag == "" {
		entry = &Entry{}
		if n.Tag != "" {
			s.entries[n.Tag] = entry
		}
	}
	entry.Notification = n
	entry.Source = source
	entry.ShownAt = s.clock.Now()
	entry.Count++
	count := entry.Count
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "notification shown",
		"tag", n.Tag,
		"source", source,
		"title", n.Title,
		"collapsed", collapsed,
		"count", count)

	payload := events.NotificationPresented{Tag: n.Tag, Source: source, Collapsed: collapsed}
	if err := events.Emit(ctx, s.emitter, events.TypeNotificationPresented, payload); err != nil {
		s.logger.WarnContext(ctx, "failed to publish notification event", "tag", n.Tag, "error", err)
	}
	return nil
}

// Alert implements Alerter by recording the message and logging it.
func (s *Surface) Alert(ctx context.Context, message string) {
	s.mu.Lock()
	s.alerts = append(s.alerts, Alert{Message: message, RaisedAt: s.clock.Now()})
	s.mu.Unlock()

	s.logger.WarnContext(ctx, "alert raised", "message", message)
}

// Close dismisses the notification with tag. It reports whether one was
// visible.
func (s *Surface) Close(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[tag]; !ok {
		return false
	}
	delete(s.entries, tag)
	return true
}

// Get returns the visible notification with tag.
func (s *Surface) Get(tag string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[tag]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Visible lists visible notifications, oldest first.
func (s *Surface) Visible() []Entry {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ShownAt.Before(out[j].ShownAt) })
	return out
}

// Alerts lists every alert raised so far.
func (s *Surface) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

var (
	_ Presenter = (*Surface)(nil)
	_ Alerter   = (*Surface)(nil)
)
