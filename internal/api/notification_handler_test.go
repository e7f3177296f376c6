package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/background"
	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/notify"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationFixture struct {
	clock   *clock.Fake
	surface *notify.Surface
	clients *notify.Clients
	router  http.Handler
}

func newNotificationFixture() *notificationFixture {
	clk := clock.NewFake(testNow)
	surface := notify.NewSurface(clk, nil, logger.Discard())
	clients := notify.NewClients(clk)
	worker := background.NewWorker(background.DefaultConfig(), surface, clients, clk, logger.Discard())
	h := NewNotificationHandler(surface, worker, clients, logger.Discard())

	r := chi.NewRouter()
	r.Get("/api/notifications", h.ListNotifications)
	r.Post("/api/notifications/{tag}/click", h.ClickNotification)
	r.Get("/api/clients", h.ListClients)
	r.Post("/api/clients", h.RegisterClient)
	r.Delete("/api/clients/{id}", h.UnregisterClient)

	return &notificationFixture{clock: clk, surface: surface, clients: clients, router: r}
}

func (f *notificationFixture) show(t *testing.T, taskID, text string) {
	t.Helper()
	req, err := domain.NewReminderRequest(domain.Task{ID: taskID, Text: text}, 0, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.surface.Show(context.Background(), "persistent",
		domain.NewReminderNotification(req, "http://localhost:3000")))
}

func TestListNotifications(t *testing.T) {
	f := newNotificationFixture()

	rec := doRequest(t, f.router, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notifications":[],"alerts":[]}`, rec.Body.String())

	f.show(t, "1", "water plants")
	f.clock.Advance(time.Second)
	f.show(t, "1", "water plants")
	f.surface.Alert(context.Background(), domain.AlertMessage("call mom"))

	rec = doRequest(t, f.router, http.MethodGet, "/api/notifications", nil)
	resp := decodeBody[NotificationsResponse](t, rec)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "reminder-1", resp.Notifications[0].Tag)
	assert.Equal(t, "Time to work on: water plants", resp.Notifications[0].Body)
	assert.Equal(t, 2, resp.Notifications[0].Count)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "Reminder: call mom", resp.Alerts[0].Message)
}

func TestClickNotification(t *testing.T) {
	t.Run("opens root without windows", func(t *testing.T) {
		f := newNotificationFixture()
		f.show(t, "1", "water plants")

		rec := doRequest(t, f.router, http.MethodPost, "/api/notifications/reminder-1/click", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decodeBody[background.ClickResult](t, rec)
		assert.Equal(t, background.ActionOpen, result.Action)
		assert.Equal(t, "/", result.URL)
		assert.Empty(t, f.surface.Visible(), "clicked notification is closed")
	})

	t.Run("focuses first window", func(t *testing.T) {
		f := newNotificationFixture()
		f.show(t, "1", "water plants")

		rec := doRequest(t, f.router, http.MethodPost, "/api/clients", RegisterClientRequest{URL: "http://localhost:3000/"})
		require.Equal(t, http.StatusCreated, rec.Code)
		first := decodeBody[notify.Client](t, rec)
		doRequest(t, f.router, http.MethodPost, "/api/clients", RegisterClientRequest{URL: "http://localhost:3000/?filter=active"})

		rec = doRequest(t, f.router, http.MethodPost, "/api/notifications/reminder-1/click", nil)
		result := decodeBody[background.ClickResult](t, rec)
		assert.Equal(t, background.ActionFocus, result.Action)
		require.NotNil(t, result.Client)
		assert.Equal(t, first.ID, result.Client.ID)
		assert.True(t, result.Client.Focused)
	})
}

func TestClientEndpoints(t *testing.T) {
	f := newNotificationFixture()

	rec := doRequest(t, f.router, http.MethodPost, "/api/clients", RegisterClientRequest{URL: "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, f.router, http.MethodPost, "/api/clients", RegisterClientRequest{URL: "http://localhost:3000/"})
	require.Equal(t, http.StatusCreated, rec.Code)
	client := decodeBody[notify.Client](t, rec)

	rec = doRequest(t, f.router, http.MethodGet, "/api/clients", nil)
	assert.Len(t, decodeBody[[]notify.Client](t, rec), 1)

	rec = doRequest(t, f.router, http.MethodDelete, "/api/clients/"+client.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, f.router, http.MethodDelete, "/api/clients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, f.router, http.MethodDelete, "/api/clients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
