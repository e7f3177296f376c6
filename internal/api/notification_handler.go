package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/api/shared"
	"github.com/phrazzld/remind-api/internal/background"
	"github.com/phrazzld/remind-api/internal/notify"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
)

// NotificationLister lists what the presentation surface shows.
type NotificationLister interface {
	Visible() []notify.Entry
	Alerts() []notify.Alert
}

// ClickHandler applies the notification click contract.
type ClickHandler interface {
	HandleClick(ctx context.Context, tag string) background.ClickResult
}

// ClientRegistry tracks open application windows.
type ClientRegistry interface {
	Register(url string) notify.Client
	Unregister(id uuid.UUID) bool
	MatchAll() []notify.Client
}

// NotificationHandler handles notification and window requests.
type NotificationHandler struct {
	surface NotificationLister
	clicks  ClickHandler
	clients ClientRegistry
	logger  *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	surface NotificationLister,
	clicks ClickHandler,
	clients ClientRegistry,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}

	return &NotificationHandler{
		surface: surface,
		clicks:  clicks,
		clients: clients,
		logger:  logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /api/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	visible := h.surface.Visible()
	resp := NotificationsResponse{
		Notifications: make([]NotificationResponse, 0, len(visible)),
		Alerts:        h.surface.Alerts(),
	}
	for _, e := range visible {
		resp.Notifications = append(resp.Notifications, entryToResponse(e))
	}
	if resp.Alerts == nil {
		resp.Alerts = []notify.Alert{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ClickNotification handles POST /api/notifications/{tag}/click
// The response says whether the caller should focus an existing window or
// open a new one.
func (h *NotificationHandler) ClickNotification(w http.ResponseWriter, r *http.Request) {
	tag, err := getPathParam(r, "tag")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, h.clicks.HandleClick(r.Context(), tag))
}

// ListClients handles GET /api/clients
func (h *NotificationHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients := h.clients.MatchAll()
	if clients == nil {
		clients = []notify.Client{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, clients)
}

// RegisterClient handles POST /api/clients
func (h *NotificationHandler) RegisterClient(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterClientRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	client := h.clients.Register(req.URL)
	log.Debug("client registered", slog.String("client_id", client.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, client)
}

// UnregisterClient handles DELETE /api/clients/{id}
func (h *NotificationHandler) UnregisterClient(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if !h.clients.Unregister(id) {
		HandleAPIError(w, r, store.ErrNotFound, "Client not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
