package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/reminder"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// mockScheduler implements ReminderScheduler with testify/mock.
type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Schedule(
	ctx context.Context,
	task domain.Task,
	delay time.Duration,
	opts ...reminder.Option,
) (*reminder.Result, error) {
	args := m.Called(ctx, task, delay)
	res, _ := args.Get(0).(*reminder.Result)
	return res, args.Error(1)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func todoRouter(h *TodoHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/todos", h.ListTodos)
	r.Post("/api/todos", h.CreateTodo)
	r.Put("/api/todos/order", h.ReorderTodos)
	r.Delete("/api/todos/completed", h.DeleteCompleted)
	r.Patch("/api/todos/{id}/toggle", h.ToggleTodo)
	r.Delete("/api/todos/{id}", h.DeleteTodo)
	r.Get("/api/preferences/theme", h.GetTheme)
	r.Put("/api/preferences/theme", h.SetTheme)
	return r
}
