package api

import (
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/notify"
	"github.com/phrazzld/remind-api/internal/reminder"
)

// CreateTodoRequest defines the payload for creating a todo.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required,max=500"`

	// RemindInMs asks for a reminder about the new todo after this many
	// milliseconds, at most 30 days. Omitted means no reminder.
	RemindInMs *int64 `json:"remind_in_ms,omitempty" validate:"omitempty,gte=0,lte=2592000000"`
}

// ReorderTodosRequest sets the display order of every todo.
type ReorderTodosRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// TodoResponse represents a single todo.
type TodoResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTodoResponse is the created todo plus, when one was requested, the
// outcome of scheduling its reminder.
type CreateTodoResponse struct {
	TodoResponse
	Reminder *ReminderResponse `json:"reminder,omitempty"`
}

// TodoListResponse is a filtered view of the todo list.
type TodoListResponse struct {
	Items     []TodoResponse `json:"items"`
	ItemsLeft int            `json:"items_left"`
	Filter    string         `json:"filter"`
}

// DeleteCompletedResponse reports how many todos were cleared.
type DeleteCompletedResponse struct {
	Deleted int `json:"deleted"`
}

// ThemeRequest sets the theme preference.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// ThemeResponse is the current theme preference.
type ThemeResponse struct {
	Theme string `json:"theme"`
}

// PermissionRequest answers the notification permission prompt.
type PermissionRequest struct {
	State string `json:"state" validate:"required"`
}

// PermissionResponse describes the notification permission.
type PermissionResponse struct {
	State     string `json:"state"`
	Supported bool   `json:"supported"`
	Prompting bool   `json:"prompting"`
}

// SubscriptionRequest registers a push subscription.
type SubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required,max=128"`
}

// SubscriptionResponse describes the registered push subscription.
type SubscriptionResponse struct {
	SubscriptionID string `json:"subscription_id,omitempty"`
	Subscribed     bool   `json:"subscribed"`
}

// ReminderResponse represents one reminder run.
type ReminderResponse struct {
	ID         string                  `json:"id"`
	TaskID     string                  `json:"task_id"`
	Text       string                  `json:"text"`
	DelayMs    int64                   `json:"delay_ms"`
	DueAt      time.Time               `json:"due_at"`
	State      string                  `json:"state"`
	Permission string                  `json:"permission,omitempty"`
	Outcomes   []domain.ChannelOutcome `json:"outcomes"`
	Notice     string                  `json:"notice,omitempty"`
	Errors     []string                `json:"errors,omitempty"`
	UpdatedAt  *time.Time              `json:"updated_at,omitempty"`
}

// RegisterClientRequest registers an open application window.
type RegisterClientRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// NotificationResponse represents a visible notification.
type NotificationResponse struct {
	Tag     string    `json:"tag"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	URL     string    `json:"url,omitempty"`
	Source  string    `json:"source"`
	Count   int       `json:"count"`
	ShownAt time.Time `json:"shown_at"`
}

// NotificationsResponse lists visible notifications and raised alerts.
type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Alerts        []notify.Alert         `json:"alerts"`
}

func todoToResponse(t domain.Task) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

func requestFields(req domain.ReminderRequest) ReminderResponse {
	return ReminderResponse{
		ID:      req.ID.String(),
		TaskID:  req.TaskID,
		Text:    req.Text,
		DelayMs: req.DelayMs(),
		DueAt:   req.DueAt(),
	}
}

func resultToResponse(res *reminder.Result) *ReminderResponse {
	out := requestFields(res.Request)
	out.State = string(res.State)
	out.Permission = string(res.Permission)
	out.Outcomes = nonNilOutcomes(res.Outcomes)
	out.Notice = res.Notice
	out.Errors = res.Errors
	return &out
}

func runToResponse(run reminder.Run) ReminderResponse {
	out := requestFields(run.Request)
	out.State = string(run.State)
	out.Permission = string(run.Permission)
	out.Outcomes = nonNilOutcomes(run.Outcomes)
	out.Errors = run.Errors
	updated := run.UpdatedAt
	out.UpdatedAt = &updated
	return out
}

func runsToResponse(runs []reminder.Run) []ReminderResponse {
	out := make([]ReminderResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runToResponse(run))
	}
	return out
}

func nonNilOutcomes(outcomes []domain.ChannelOutcome) []domain.ChannelOutcome {
	if outcomes == nil {
		return []domain.ChannelOutcome{}
	}
	return outcomes
}

func entryToResponse(e notify.Entry) NotificationResponse {
	return NotificationResponse{
		Tag:     e.Notification.Tag,
		Title:   e.Notification.Title,
		Body:    e.Notification.Body,
		URL:     e.Notification.Data.URL,
		Source:  e.Source,
		Count:   e.Count,
		ShownAt: e.ShownAt,
	}
}
