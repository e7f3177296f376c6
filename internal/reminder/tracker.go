package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/events"
)

// DefaultHistorySize is used when a tracker is created with a non-positive
// size.
const DefaultHistorySize = 100

// Run is the tracked state of one reminder request.
type Run struct {
	Request    domain.ReminderRequest  `json:"request"`
	State      domain.ReminderState    `json:"state"`
	Permission domain.PermissionState  `json:"permission,omitempty"`
	Outcomes   []domain.ChannelOutcome `json:"outcomes"`
	Errors     []string                `json:"errors,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func (r *Run) clone() Run {
	out := *r
	out.Outcomes = append([]domain.ChannelOutcome(nil), r.Outcomes...)
	out.Errors = append([]string(nil), r.Errors...)
	return out
}

// Tracker keeps the runs currently being scheduled and a bounded history
// of recent runs. It listens for presented notifications to mark runs
// delivered.
type Tracker struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*Run
	pending map[uuid.UUID]struct{}
	order   []uuid.UUID
	size    int

	clock  clock.Clock
	logger *slog.Logger
}

// NewTracker creates a tracker that remembers up to size runs.
func NewTracker(size int, clk clock.Clock, logger *slog.Logger) *Tracker {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Tracker{
		runs:    make(map[uuid.UUID]*Run),
		pending: make(map[uuid.UUID]struct{}),
		size:    size,
		clock:   clk,
		logger:  logger.With("component", "reminder_tracker"),
	}
}

// Begin starts tracking req in the created state.
func (t *Tracker) Begin(req domain.ReminderRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs[req.ID] = &Run{Request: req, State: domain.StateCreated, UpdatedAt: t.clock.Now()}
	t.pending[req.ID] = struct{}{}
	t.order = append(t.order, req.ID)

	excess := len(t.order) - t.size
	if excess <= 0 {
		return
	}
	// Runs still being scheduled are never evicted.
	kept := make([]uuid.UUID, 0, len(t.order))
	for _, id := range t.order {
		if _, inFlight := t.pending[id]; excess > 0 && !inFlight {
			delete(t.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}

func (t *Tracker) update(id uuid.UUID, fn func(r *Run)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r, ok := t.runs[id]; ok {
		fn(r)
		r.UpdatedAt = t.clock.Now()
	}
}

// Transition moves a run to state. Terminal runs do not move.
func (t *Tracker) Transition(id uuid.UUID, state domain.ReminderState) {
	t.update(id, func(r *Run) {
		if r.State.Terminal() {
			return
		}
		r.State = state
	})
}

// SetPermission records the permission the run was scheduled under.
func (t *Tracker) SetPermission(id uuid.UUID, p domain.PermissionState) {
	t.update(id, func(r *Run) { r.Permission = p })
}

// Record appends a channel outcome to a run.
func (t *Tracker) Record(id uuid.UUID, outcome domain.ChannelOutcome) {
	t.update(id, func(r *Run) { r.Outcomes = append(r.Outcomes, outcome) })
}

// AddError appends a user-facing error to a run.
func (t *Tracker) AddError(id uuid.UUID, msg string) {
	t.update(id, func(r *Run) { r.Errors = append(r.Errors, msg) })
}

// Finish removes a run from the pending set.
func (t *Tracker) Finish(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// Get returns a copy of a run.
func (t *Tracker) Get(id uuid.UUID) (Run, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.runs[id]
	if !ok {
		return Run{}, false
	}
	return r.clone(), true
}

// Pending returns the runs that are still being scheduled.
func (t *Tracker) Pending() []Run {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Run, 0, len(t.pending))
	for _, id := range t.order {
		if _, ok := t.pending[id]; ok {
			out = append(out, t.runs[id].clone())
		}
	}
	return out
}

// Recent returns tracked runs, newest first.
func (t *Tracker) Recent() []Run {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Run, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		out = append(out, t.runs[t.order[i]].clone())
	}
	return out
}

// HandleEvent implements events.EventHandler. A presented notification
// marks every armed run with the same tag that is already due as delivered.
func (t *Tracker) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeNotificationPresented {
		return nil
	}

	var payload events.NotificationPresented
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	t.mu.Lock()
	now := t.clock.Now()
	var delivered []uuid.UUID
	for _, id := range t.order {
		r := t.runs[id]
		if r.State != domain.StateChannelArmed || r.Request.DedupTag() != payload.Tag {
			continue
		}
		if r.Request.DueAt().After(now) {
			continue
		}
		r.State = domain.StateDelivered
		r.UpdatedAt = now
		delivered = append(delivered, id)
	}
	t.mu.Unlock()

	for _, id := range delivered {
		t.logger.InfoContext(ctx, "reminder delivered",
			"request_id", id,
			"tag", payload.Tag,
			"source", payload.Source)
	}
	return nil
}

var _ events.EventHandler = (*Tracker)(nil)
