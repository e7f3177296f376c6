package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Task is a single todo item. The reminder subsystem only ever reads the
// ID and Text of a task; it never mutates one.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTask creates an active task. The ID is the creation time in
// milliseconds, which is unique enough for a single user's list.
func NewTask(text string, now time.Time) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "is required", ErrEmptyText)
	}

	return &Task{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Text:      text,
		Completed: false,
		CreatedAt: now.UTC(),
	}, nil
}

// TaskFilter selects a subset of the task list.
type TaskFilter string

// Supported filters.
const (
	FilterAll       TaskFilter = "all"
	FilterActive    TaskFilter = "active"
	FilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter parses a filter name case-insensitively. An empty
// string selects all tasks.
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch TaskFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", NewValidationError("filter", "must be all, active or completed", ErrValidation)
	}
}

// Match reports whether t passes the filter.
func (f TaskFilter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// FilterTasks returns the tasks that pass f, preserving order.
func FilterTasks(tasks []Task, f TaskFilter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// ItemsLeft counts the tasks that are not completed.
func ItemsLeft(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// ReorderTasks returns tasks arranged in the order given by ids. ids must
// name every task exactly once.
func ReorderTasks(tasks []Task, ids []string) ([]Task, error) {
	if len(ids) != len(tasks) {
		return nil, NewValidationError("ids", "must list every task exactly once", ErrInvalidOrder)
	}

	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	out := make([]Task, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, NewValidationError("ids", fmt.Sprintf("unknown or repeated task %q", id), ErrInvalidOrder)
		}
		delete(byID, id)
		out = append(out, t)
	}
	return out, nil
}
