package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/remind-api/internal/background"
	"github.com/phrazzld/remind-api/internal/domain"
)

// DefaultHandshakeTimeout bounds the wait for the background context.
const DefaultHandshakeTimeout = 2 * time.Second

// Worker is the background execution context as seen by the persistent
// channel.
type Worker interface {
	Controlling() bool
	Ready() <-chan struct{}
	Post(msg background.Message) error
}

// Persistent arms reminders in the background execution context, which
// keeps running after the requesting page is gone.
type Persistent struct {
	worker           Worker
	handshakeTimeout time.Duration
	origin           string
	logger           *slog.Logger
}

// NewPersistent creates the persistent channel. worker may be nil, in which
// case the channel is always unavailable.
func NewPersistent(worker Worker, handshakeTimeout time.Duration, origin string, logger *slog.Logger) *Persistent {
	if handshakeTimeout <= 0 {
		handshakeTimeout = DefaultHandshakeTimeout
	}
	return &Persistent{
		worker:           worker,
		handshakeTimeout: handshakeTimeout,
		origin:           origin,
		logger:           logger.With("component", "persistent_channel"),
	}
}

// Arm hands req to the background context. It waits at most the handshake
// timeout for the context to take control.
func (p *Persistent) Arm(ctx context.Context, req domain.ReminderRequest) domain.ChannelOutcome {
	if p.worker == nil {
		return domain.Unavailable(domain.ChannelPersistent, "background context not installed")
	}

	if !p.worker.Controlling() {
		if err := p.handshake(ctx); err != nil {
			p.logger.InfoContext(ctx, "background context not ready",
				"request_id", req.ID,
				"timeout", p.handshakeTimeout.String(),
				"error", err)
			return domain.Unavailable(domain.ChannelPersistent, "background context not controlling")
		}
	}

	msg := background.NewScheduleMessage(req, domain.NewReminderNotification(req, p.origin))
	if err := p.worker.Post(msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to post to background context",
			"request_id", req.ID,
			"error", err)
		return domain.Failed(domain.ChannelPersistent,
			"could not reach the background context",
			fmt.Errorf("%w: %w", domain.ErrTransportFailure, err))
	}

	p.logger.InfoContext(ctx, "persistent reminder armed",
		"request_id", req.ID,
		"tag", msg.Tag,
		"delay_ms", msg.DelayMs)
	return domain.Armed(domain.ChannelPersistent, "scheduled in background context")
}

func (p *Persistent) handshake(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.handshakeTimeout)
	defer cancel()

	select {
	case <-p.worker.Ready():
		if !p.worker.Controlling() {
			return background.ErrWorkerStopped
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
