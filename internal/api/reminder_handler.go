package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/remind-api/internal/api/shared"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/reminder"
)

// PermissionHost owns the notification permission and its open prompt.
type PermissionHost interface {
	Supported() bool
	Permission() domain.PermissionState
	Pending() bool
	Respond(state domain.PermissionState)
}

// SubscriptionRegistry holds the push subscription of this device.
type SubscriptionRegistry interface {
	SubscriptionID() (domain.SubscriptionID, bool)
	Register(id domain.SubscriptionID)
	Unregister()
}

// RunLister lists tracked reminder runs.
type RunLister interface {
	Recent() []reminder.Run
	Pending() []reminder.Run
}

// ReminderHandler handles permission, push subscription and reminder run
// requests.
type ReminderHandler struct {
	host          PermissionHost
	subscriptions SubscriptionRegistry
	runs          RunLister
	logger        *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler. subscriptions is nil
// when remote push is disabled.
func NewReminderHandler(
	host PermissionHost,
	subscriptions SubscriptionRegistry,
	runs RunLister,
	logger *slog.Logger,
) *ReminderHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReminderHandler")
	}

	return &ReminderHandler{
		host:          host,
		subscriptions: subscriptions,
		runs:          runs,
		logger:        logger.With(slog.String("component", "reminder_handler")),
	}
}

func (h *ReminderHandler) permission() PermissionResponse {
	if !h.host.Supported() {
		return PermissionResponse{State: string(domain.PermissionDenied)}
	}
	return PermissionResponse{
		State:     string(h.host.Permission()),
		Supported: true,
		Prompting: h.host.Pending(),
	}
}

// GetPermission handles GET /api/permission
func (h *ReminderHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.permission())
}

// SetPermission handles PUT /api/permission
// It answers an open prompt, or records a decision made elsewhere.
func (h *ReminderHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req PermissionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	state, err := domain.ParsePermissionState(req.State)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	answered := h.host.Pending()
	h.host.Respond(state)
	log.Info("notification permission updated",
		slog.String("state", string(state)),
		slog.Bool("answered_prompt", answered))

	shared.RespondWithJSON(w, r, http.StatusOK, h.permission())
}

// GetSubscription handles GET /api/push/subscription
func (h *ReminderHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	if h.subscriptions == nil {
		HandleAPIError(w, r, domain.ErrChannelUnavailable, "")
		return
	}

	id, ok := h.subscriptions.SubscriptionID()
	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{
		SubscriptionID: string(id),
		Subscribed:     ok,
	})
}

// RegisterSubscription handles PUT /api/push/subscription
func (h *ReminderHandler) RegisterSubscription(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.subscriptions == nil {
		HandleAPIError(w, r, domain.ErrChannelUnavailable, "")
		return
	}

	var req SubscriptionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	id := domain.SubscriptionID(req.SubscriptionID)
	h.subscriptions.Register(id)
	log.Info("push subscription registered")

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{
		SubscriptionID: string(id),
		Subscribed:     true,
	})
}

// DeleteSubscription handles DELETE /api/push/subscription
func (h *ReminderHandler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if h.subscriptions == nil {
		HandleAPIError(w, r, domain.ErrChannelUnavailable, "")
		return
	}

	h.subscriptions.Unregister()
	logger.FromContextOrDefault(r.Context(), h.logger).Info("push subscription removed")
	w.WriteHeader(http.StatusNoContent)
}

// ListReminders handles GET /api/reminders
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, runsToResponse(h.runs.Recent()))
}

// ListPendingReminders handles GET /api/reminders/pending
func (h *ReminderHandler) ListPendingReminders(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, runsToResponse(h.runs.Pending()))
}
