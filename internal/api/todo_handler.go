package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/remind-api/internal/api/shared"
	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/permission"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/reminder"
	"github.com/phrazzld/remind-api/internal/store"
)

// ReminderScheduler schedules a reminder for a newly created todo.
type ReminderScheduler interface {
	Schedule(ctx context.Context, task domain.Task, delay time.Duration, opts ...reminder.Option) (*reminder.Result, error)
}

// TodoHandler handles todo and theme requests.
type TodoHandler struct {
	todos       store.TodoStore
	preferences store.PreferenceStore
	scheduler   ReminderScheduler
	clock       clock.Clock
	logger      *slog.Logger
}

// NewTodoHandler creates a new TodoHandler. scheduler may be nil, in which
// case reminder requests are ignored.
func NewTodoHandler(
	todos store.TodoStore,
	preferences store.PreferenceStore,
	scheduler ReminderScheduler,
	clk clock.Clock,
	logger *slog.Logger,
) *TodoHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TodoHandler")
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &TodoHandler{
		todos:       todos,
		preferences: preferences,
		scheduler:   scheduler,
		clock:       clk,
		logger:      logger.With(slog.String("component", "todo_handler")),
	}
}

// ListTodos handles GET /api/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	filter, err := domain.ParseTaskFilter(r.URL.Query().Get("filter"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.todos.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list todos")
		return
	}

	visible := domain.FilterTasks(tasks, filter)
	items := make([]TodoResponse, 0, len(visible))
	for _, t := range visible {
		items = append(items, todoToResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TodoListResponse{
		Items:     items,
		ItemsLeft: domain.ItemsLeft(tasks),
		Filter:    string(filter),
	})
}

// CreateTodo handles POST /api/todos
// When remind_in_ms is present a reminder is scheduled once the todo is
// stored. Creating a todo counts as a user action, so the permission
// prompt may be shown.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTodoRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := domain.NewTask(req.Text, h.clock.Now())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.todos.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	log.Debug("todo created", slog.String("todo_id", task.ID))

	resp := CreateTodoResponse{TodoResponse: todoToResponse(*task)}

	if req.RemindInMs != nil && h.scheduler != nil {
		delay := time.Duration(*req.RemindInMs) * time.Millisecond
		ctx := permission.WithUserGesture(r.Context())
		start := time.Now()

		result, err := h.scheduler.Schedule(ctx, *task, delay, reminder.WithCleanup(func() {
			log.Debug("reminder run finished",
				slog.String("todo_id", task.ID),
				slog.Duration("took", time.Since(start)))
		}))
		if err != nil {
			// The todo is stored; only the reminder is rejected.
			log.Warn("reminder not scheduled",
				slog.String("todo_id", task.ID),
				slog.String("error", err.Error()))
		} else {
			resp.Reminder = resultToResponse(result)
		}
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// ToggleTodo handles PATCH /api/todos/{id}/toggle
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := getPathParam(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.todos.Toggle(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, todoToResponse(*task))
}

// DeleteTodo handles DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := getPathParam(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.todos.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCompleted handles DELETE /api/todos/completed
func (h *TodoHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.todos.DeleteCompleted(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear completed todos")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteCompletedResponse{Deleted: n})
}

// ReorderTodos handles PUT /api/todos/order
func (h *TodoHandler) ReorderTodos(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ReorderTodosRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if err := h.todos.Reorder(r.Context(), req.IDs); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.ListTodos(w, r)
}

// GetTheme handles GET /api/preferences/theme
// A theme that was never stored reads as the default.
func (h *TodoHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.preferences.GetTheme(r.Context())
	if errors.Is(err, store.ErrPreferenceNotFound) {
		theme, err = domain.DefaultTheme, nil
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load theme")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ThemeResponse{Theme: string(theme)})
}

// SetTheme handles PUT /api/preferences/theme
func (h *TodoHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ThemeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	theme, err := domain.ParseTheme(req.Theme)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.preferences.SetTheme(r.Context(), theme); err != nil {
		HandleAPIError(w, r, err, "Failed to save theme")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ThemeResponse{Theme: string(theme)})
}
