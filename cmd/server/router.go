package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/remind-api/internal/api"
	apiMiddleware "github.com/phrazzld/remind-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	todoHandler := api.NewTodoHandler(
		app.stores.todos,
		app.stores.preferences,
		app.policy,
		app.clock,
		app.logger,
	)

	// A nil *onesignal.Client must not become a non-nil interface.
	var subscriptions api.SubscriptionRegistry
	if app.push != nil {
		subscriptions = app.push
	}
	reminderHandler := api.NewReminderHandler(app.host, subscriptions, app.policy.Tracker(), app.logger)
	notificationHandler := api.NewNotificationHandler(app.surface, app.worker, app.clients, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todoHandler.ListTodos)
			r.Post("/", todoHandler.CreateTodo)
			r.Put("/order", todoHandler.ReorderTodos)
			r.Delete("/completed", todoHandler.DeleteCompleted)
			r.Patch("/{id}/toggle", todoHandler.ToggleTodo)
			r.Delete("/{id}", todoHandler.DeleteTodo)
		})
		r.Get("/preferences/theme", todoHandler.GetTheme)
		r.Put("/preferences/theme", todoHandler.SetTheme)

		r.Get("/permission", reminderHandler.GetPermission)
		r.Put("/permission", reminderHandler.SetPermission)

		r.Get("/push/subscription", reminderHandler.GetSubscription)
		r.Put("/push/subscription", reminderHandler.RegisterSubscription)
		r.Delete("/push/subscription", reminderHandler.DeleteSubscription)

		r.Get("/reminders", reminderHandler.ListReminders)
		r.Get("/reminders/pending", reminderHandler.ListPendingReminders)

		r.Get("/notifications", notificationHandler.ListNotifications)
		r.Post("/notifications/{tag}/click", notificationHandler.ClickNotification)

		r.Get("/clients", notificationHandler.ListClients)
		r.Post("/clients", notificationHandler.RegisterClient)
		r.Delete("/clients/{id}", notificationHandler.UnregisterClient)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
