package background

import (
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
)

// TypeScheduleNotification asks the worker to show a notification after a
// delay.
const TypeScheduleNotification = "SCHEDULE_NOTIFICATION"

// Message is posted from the foreground to the worker. There is no reply.
type Message struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	DelayMs int64  `json:"delayMs"`
	Tag     string `json:"tag,omitempty"`
	URL     string `json:"url,omitempty"`
}

// NewScheduleMessage builds the message for a reminder notification.
func NewScheduleMessage(req domain.ReminderRequest, n domain.Notification) Message {
	return Message{
		Type:    TypeScheduleNotification,
		Title:   n.Title,
		Body:    n.Body,
		DelayMs: req.DelayMs(),
		Tag:     n.Tag,
		URL:     n.Data.URL,
	}
}

// Delay returns the message delay, never negative.
func (m Message) Delay() time.Duration {
	if m.DelayMs <= 0 {
		return 0
	}
	return time.Duration(m.DelayMs) * time.Millisecond
}

// notification renders the message with the fixed reminder presentation.
func (m Message) notification() domain.Notification {
	vibrate := make([]int, len(domain.DefaultVibrate))
	copy(vibrate, domain.DefaultVibrate)

	return domain.Notification{
		Title:              m.Title,
		Body:               m.Body,
		Icon:               domain.ReminderIcon,
		Badge:              domain.ReminderBadge,
		Vibrate:            vibrate,
		Tag:                m.Tag,
		RequireInteraction: true,
		Renotify:           true,
		Data:               domain.NotificationData{URL: m.URL},
	}
}
