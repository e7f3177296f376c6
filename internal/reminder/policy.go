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

// DeniedNotice is shown once per process when notifications are blocked.
const DeniedNotice = "Notifications are blocked. Reminders will only appear while the app is open."

// Gatekeeper resolves the notification permission.
type Gatekeeper interface {
	Query() domain.PermissionState
	Request(ctx context.Context) domain.PermissionState
}

// Armer arms a reminder on a channel that needs nothing else.
type Armer interface {
	Arm(ctx context.Context, req domain.ReminderRequest) domain.ChannelOutcome
}

// RemoteScheduler schedules a reminder against a push subscription.
type RemoteScheduler interface {
	Schedule(ctx context.Context, req domain.ReminderRequest, subscription domain.SubscriptionID) domain.ChannelOutcome
}

// Subscriptions exposes the push subscription owned by the host platform.
type Subscriptions interface {
	SubscriptionID() (domain.SubscriptionID, bool)
	RequestPermission(ctx context.Context) error
}

// Config tunes the escalation policy.
type Config struct {
	// SubscriptionRetries is how many times a remote push that found no
	// subscription is retried after prompting for one.
	SubscriptionRetries int

	// SubscriptionPromptTimeout bounds each subscription prompt.
	SubscriptionPromptTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		SubscriptionRetries:       1,
		SubscriptionPromptTimeout: 30 * time.Second,
	}
}

// Result describes what a Schedule call armed.
type Result struct {
	Request    domain.ReminderRequest  `json:"request"`
	State      domain.ReminderState    `json:"state"`
	Permission domain.PermissionState  `json:"permission"`
	Outcomes   []domain.ChannelOutcome `json:"outcomes"`
	Notice     string                  `json:"notice,omitempty"`
	Errors     []string                `json:"errors,omitempty"`
}

// Outcome returns the last outcome recorded for ch.
func (r *Result) Outcome(ch domain.ChannelKind) (domain.ChannelOutcome, bool) {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		if r.Outcomes[i].Channel == ch {
			return r.Outcomes[i], true
		}
	}
	return domain.ChannelOutcome{}, false
}

// Option customizes a single Schedule call.
type Option func(*runOptions)

type runOptions struct {
	cleanup []func()
}

// WithCleanup registers fn to run exactly once when Schedule returns,
// whichever way it returns.
func WithCleanup(fn func()) Option {
	return func(o *runOptions) {
		o.cleanup = append(o.cleanup, fn)
	}
}

// Policy decides which channels deliver a reminder.
//
// The foreground channel is armed first for every request. With permission
// granted the persistent channel is tried next and, when it cannot accept
// the request, the remote push channel. Without permission only the
// foreground channel is used.
type Policy struct {
	gatekeeper    Gatekeeper
	persistent    Armer
	remote        RemoteScheduler
	foreground    Armer
	subscriptions Subscriptions
	tracker       *Tracker
	emitter       events.EventEmitter
	clock         clock.Clock
	config        Config
	logger        *slog.Logger

	noticeOnce sync.Once
}

// Deps groups the collaborators of a Policy.
type Deps struct {
	Gatekeeper Gatekeeper
	Persistent Armer
	Remote     RemoteScheduler
	Foreground Armer

	// Subscriptions may be nil when remote push is disabled.
	Subscriptions Subscriptions

	Tracker *Tracker
	Emitter events.EventEmitter
	Clock   clock.Clock
}

// NewPolicy creates an escalation policy.
func NewPolicy(deps Deps, config Config, logger *slog.Logger) (*Policy, error) {
	if deps.Gatekeeper == nil {
		return nil, fmt.Errorf("gatekeeper cannot be nil")
	}
	if deps.Foreground == nil {
		return nil, fmt.Errorf("foreground channel cannot be nil")
	}
	if deps.Persistent == nil || deps.Remote == nil {
		return nil, fmt.Errorf("persistent and remote channels cannot be nil")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Tracker == nil {
		deps.Tracker = NewTracker(DefaultHistorySize, deps.Clock, logger)
	}
	if config.SubscriptionRetries < 0 {
		config.SubscriptionRetries = 0
	}
	if config.SubscriptionPromptTimeout <= 0 {
		config.SubscriptionPromptTimeout = DefaultConfig().SubscriptionPromptTimeout
	}

	return &Policy{
		gatekeeper:    deps.Gatekeeper,
		persistent:    deps.Persistent,
		remote:        deps.Remote,
		foreground:    deps.Foreground,
		subscriptions: deps.Subscriptions,
		tracker:       deps.Tracker,
		emitter:       deps.Emitter,
		clock:         deps.Clock,
		config:        config,
		logger:        logger.With("component", "escalation_policy"),
	}, nil
}

// Tracker returns the run tracker.
func (p *Policy) Tracker() *Tracker {
	return p.tracker
}

// Schedule creates a reminder for task after delay and arms channels for
// it. The only error is an invalid request; channel problems are reported
// in the Result.
func (p *Policy) Schedule(
	ctx context.Context,
	task domain.Task,
	delay time.Duration,
	opts ...Option,
) (*Result, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	var tracked uuid.UUID
	var cleanupOnce sync.Once
	finalize := func() {
		cleanupOnce.Do(func() {
			if tracked != uuid.Nil {
				p.tracker.Finish(tracked)
			}
			for _, fn := range o.cleanup {
				fn()
			}
		})
	}
	defer finalize()

	req, err := domain.NewReminderRequest(task, delay, p.clock.Now())
	if err != nil {
		return nil, err
	}
	p.tracker.Begin(req)
	tracked = req.ID

	log := p.logger.With("request_id", req.ID, "task_id", req.TaskID)
	res := &Result{Request: req, State: domain.StateCreated}

	// Armed first, and never dependent on the other channels.
	p.record(ctx, res, p.foreground.Arm(ctx, req))

	permission := p.gatekeeper.Query()
	if permission == domain.PermissionDefault {
		permission = p.gatekeeper.Request(ctx)
	}
	res.Permission = permission
	p.tracker.SetPermission(req.ID, permission)
	p.transition(res, domain.StatePermissionChecked)

	if permission != domain.PermissionGranted {
		if permission == domain.PermissionDenied {
			p.noticeOnce.Do(func() { res.Notice = DeniedNotice })
		}
		log.InfoContext(ctx, "notifications not permitted, foreground only",
			"permission", permission)
		p.transition(res, domain.StateChannelArmed)
		return res, nil
	}

	persistent := p.persistent.Arm(ctx, req)
	p.record(ctx, res, persistent)
	if persistent.IsArmed() {
		p.transition(res, domain.StateChannelArmed)
		return res, nil
	}

	log.InfoContext(ctx, "persistent channel not armed, escalating to remote push",
		"status", persistent.Status,
		"detail", persistent.Detail)

	remote := p.scheduleRemote(ctx, log, req)
	p.record(ctx, res, remote)

	switch remote.Status {
	case domain.StatusArmed:
		p.transition(res, domain.StateChannelArmed)
	case domain.StatusFailed:
		msg := "Push reminder could not be scheduled: " + remote.Detail
		res.Errors = append(res.Errors, msg)
		p.tracker.AddError(req.ID, msg)
		p.transition(res, domain.StateExhausted)
	default:
		p.transition(res, domain.StateExhausted)
	}

	if res.State == domain.StateExhausted {
		log.WarnContext(ctx, "durable channels exhausted, relying on foreground",
			"remote_status", remote.Status,
			"remote_detail", remote.Detail)
	}
	return res, nil
}

// scheduleRemote tries the remote channel, prompting for a subscription
// and retrying while it reports no subscription.
func (p *Policy) scheduleRemote(ctx context.Context, log *slog.Logger, req domain.ReminderRequest) domain.ChannelOutcome {
	if p.subscriptions == nil {
		return domain.Unavailable(domain.ChannelRemotePush, "remote push is disabled")
	}

	for attempt := 0; ; attempt++ {
		subscription, _ := p.subscriptions.SubscriptionID()
		out := p.remote.Schedule(ctx, req, subscription)
		if out.Status != domain.StatusUnavailable {
			return out
		}
		if attempt >= p.config.SubscriptionRetries {
			return domain.Unavailable(domain.ChannelRemotePush,
				fmt.Sprintf("exhausted after %d subscription prompt(s): %s", attempt, out.Detail))
		}

		log.InfoContext(ctx, "prompting for push subscription", "attempt", attempt+1)
		promptCtx, cancel := context.WithTimeout(ctx, p.config.SubscriptionPromptTimeout)
		err := p.subscriptions.RequestPermission(promptCtx)
		cancel()
		if err != nil {
			log.InfoContext(ctx, "subscription prompt ended without a subscription", "error", err)
		}
	}
}

func (p *Policy) transition(res *Result, state domain.ReminderState) {
	res.State = state
	p.tracker.Transition(res.Request.ID, state)
}

func (p *Policy) record(ctx context.Context, res *Result, out domain.ChannelOutcome) {
	res.Outcomes = append(res.Outcomes, out)
	p.tracker.Record(res.Request.ID, out)

	payload := events.ChannelOutcomeRecorded{
		RequestID: res.Request.ID,
		TaskID:    res.Request.TaskID,
		Channel:   string(out.Channel),
		Status:    string(out.Status),
		Detail:    out.Detail,
	}
	if err := events.Emit(ctx, p.emitter, events.TypeChannelOutcome, payload); err != nil {
		p.logger.WarnContext(ctx, "failed to publish channel outcome", "error", err)
	}
}
