package channel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/onesignal"
)

// MinSafetyBuffer is the smallest delay added to every remote delivery.
const MinSafetyBuffer = 5 * time.Second

// PushScheduler schedules a future push message.
type PushScheduler interface {
	ScheduleNotification(ctx context.Context, n onesignal.ScheduledNotification) (string, error)
}

// RemotePush delegates the delay to the remote push service.
type RemotePush struct {
	client PushScheduler
	buffer time.Duration
	clock  clock.Clock
	logger *slog.Logger
}

// NewRemotePush creates the remote push channel. client may be nil when
// push is disabled.
func NewRemotePush(client PushScheduler, buffer time.Duration, clk clock.Clock, logger *slog.Logger) *RemotePush {
	if buffer < MinSafetyBuffer {
		buffer = MinSafetyBuffer
	}
	return &RemotePush{
		client: client,
		buffer: buffer,
		clock:  clk,
		logger: logger.With("component", "remote_push_channel"),
	}
}

// SendAfter returns the absolute delivery instant for req scheduled now.
func (r *RemotePush) SendAfter(req domain.ReminderRequest) time.Time {
	return r.clock.Now().Add(req.Delay).Add(r.buffer)
}

// Schedule issues a single scheduling request for req. It never retries.
func (r *RemotePush) Schedule(
	ctx context.Context,
	req domain.ReminderRequest,
	subscription domain.SubscriptionID,
) domain.ChannelOutcome {
	if r.client == nil {
		return domain.Unavailable(domain.ChannelRemotePush, "remote push is disabled")
	}
	if subscription == "" {
		return domain.Unavailable(domain.ChannelRemotePush, "no push subscription")
	}

	sendAfter := r.SendAfter(req)
	id, err := r.client.ScheduleNotification(ctx, onesignal.ScheduledNotification{
		SubscriptionID: subscription,
		Heading:        domain.ReminderTitle,
		Content:        domain.ReminderBody(req.Text),
		SendAfter:      sendAfter,
	})
	if err != nil {
		var apiErr *onesignal.APIError
		if errors.As(err, &apiErr) {
			r.logger.WarnContext(ctx, "remote push rejected",
				"request_id", req.ID,
				"status", apiErr.StatusCode,
				"detail", apiErr.Message)
			return domain.Failed(domain.ChannelRemotePush, apiErr.Message, err)
		}
		r.logger.ErrorContext(ctx, "remote push transport failure",
			"request_id", req.ID,
			"error", err)
		return domain.Failed(domain.ChannelRemotePush, "could not reach the push service", err)
	}

	r.logger.InfoContext(ctx, "remote push scheduled",
		"request_id", req.ID,
		"notification_id", id,
		"send_after", onesignal.FormatSendAfter(sendAfter))
	return domain.Armed(domain.ChannelRemotePush, "scheduled for "+onesignal.FormatSendAfter(sendAfter))
}
