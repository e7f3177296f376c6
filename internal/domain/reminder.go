package domain

import (
	"time"

	"github.com/google/uuid"
)

// DedupTagPrefix prefixes every reminder notification tag.
const DedupTagPrefix = "reminder-"

// ReminderRequest asks for a one-shot reminder about a task after Delay.
// It is created once per confirmed task-creation event and never edited.
type ReminderRequest struct {
	ID          uuid.UUID     `json:"id"`
	TaskID      string        `json:"task_id"`
	Text        string        `json:"text"`
	Delay       time.Duration `json:"delay"`
	RequestedAt time.Time     `json:"requested_at"`
}

// NewReminderRequest validates and builds a ReminderRequest for task.
func NewReminderRequest(task Task, delay time.Duration, now time.Time) (ReminderRequest, error) {
	if task.ID == "" {
		return ReminderRequest{}, NewValidationError("task_id", "is required", ErrInvalidID)
	}
	if task.Text == "" {
		return ReminderRequest{}, NewValidationError("text", "is required", ErrEmptyText)
	}
	if delay < 0 {
		return ReminderRequest{}, NewValidationError("delay", "must not be negative", ErrInvalidDelay)
	}

	return ReminderRequest{
		ID:          uuid.New(),
		TaskID:      task.ID,
		Text:        task.Text,
		Delay:       delay,
		RequestedAt: now.UTC(),
	}, nil
}

// DelayMs returns the delay in whole milliseconds.
func (r ReminderRequest) DelayMs() int64 {
	return r.Delay.Milliseconds()
}

// DueAt is the instant the reminder should fire, best effort.
func (r ReminderRequest) DueAt() time.Time {
	return r.RequestedAt.Add(r.Delay)
}

// DedupTag is shared by every notification raised for the same task, so
// the presentation surface collapses repeats from different channels and
// from repeated requests.
func (r ReminderRequest) DedupTag() string {
	return DedupTagPrefix + r.TaskID
}

// ReminderState is a step of a reminder run.
type ReminderState string

// Reminder run states. There is no cancelled state: an armed reminder
// cannot be withdrawn.
const (
	StateCreated           ReminderState = "created"
	StatePermissionChecked ReminderState = "permission_checked"
	StateChannelArmed      ReminderState = "channel_armed"
	StateDelivered         ReminderState = "delivered"
	StateExhausted         ReminderState = "exhausted"
)

// Terminal reports whether no further transition is modeled from s.
func (s ReminderState) Terminal() bool {
	return s == StateDelivered || s == StateExhausted
}
