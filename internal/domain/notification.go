package domain

import "fmt"

// Render defaults for reminder notifications.
const (
	ReminderTitle     = "Todo reminder"
	ReminderIcon      = "/logo192.png"
	ReminderBadge     = "/logo192.png"
	ReminderBodyStart = "Time to work on: "
)

// DefaultVibrate is the vibration pattern used for reminders.
var DefaultVibrate = []int{200, 100, 200}

// NotificationData is the payload carried by a notification. URL is the
// origin to focus or open on click.
type NotificationData struct {
	URL string `json:"url"`
}

// Notification holds the render parameters shared by the persistent and
// foreground channels.
type Notification struct {
	Title              string           `json:"title"`
	Body               string           `json:"body"`
	Icon               string           `json:"icon,omitempty"`
	Badge              string           `json:"badge,omitempty"`
	Vibrate            []int            `json:"vibrate,omitempty"`
	Tag                string           `json:"tag"`
	RequireInteraction bool             `json:"require_interaction"`
	Renotify           bool             `json:"renotify"`
	Data               NotificationData `json:"data"`
}

// ReminderBody formats the body line for a task reminder.
func ReminderBody(text string) string {
	return ReminderBodyStart + text
}

// AlertMessage is the plain alert shown when notifications are not allowed.
func AlertMessage(text string) string {
	return fmt.Sprintf("Reminder: %s", text)
}

// NewReminderNotification builds the notification for req. origin is the
// application root the notification deep-links to.
func NewReminderNotification(req ReminderRequest, origin string) Notification {
	vibrate := make([]int, len(DefaultVibrate))
	copy(vibrate, DefaultVibrate)

	return Notification{
		Title:              ReminderTitle,
		Body:               ReminderBody(req.Text),
		Icon:               ReminderIcon,
		Badge:              ReminderBadge,
		Vibrate:            vibrate,
		Tag:                req.DedupTag(),
		RequireInteraction: true,
		Renotify:           true,
		Data:               NotificationData{URL: origin},
	}
}
