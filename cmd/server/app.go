package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/remind-api/internal/background"
	"github.com/phrazzld/remind-api/internal/channel"
	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/events"
	"github.com/phrazzld/remind-api/internal/notify"
	"github.com/phrazzld/remind-api/internal/permission"
	"github.com/phrazzld/remind-api/internal/platform/onesignal"
	"github.com/phrazzld/remind-api/internal/reminder"
)

// workerStopTimeout bounds how long shutdown waits for persistent
// reminders that are about to be shown.
const workerStopTimeout = 5 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock

	stores *stores

	emitter *events.InMemoryEventEmitter
	surface *notify.Surface
	clients *notify.Clients
	worker  *background.Worker

	host       *permission.PromptHost
	gatekeeper *permission.Gatekeeper

	// push is nil when remote push is disabled.
	push *onesignal.Client

	foreground *channel.Foreground
	policy     *reminder.Policy
}

// newApplication creates a new application instance with all dependencies
// initialized and the background worker started. chime receives the
// foreground audio cue.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	clk clock.Clock,
	chime io.Writer,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		clock:  clk,
	}

	var err error
	app.stores, err = openStores(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.surface = notify.NewSurface(clk, app.emitter, logger)
	app.clients = notify.NewClients(clk)

	app.worker = background.NewWorker(background.Config{
		ActivationDelay: cfg.Reminder.ActivationDelay,
		InboxSize:       cfg.Reminder.InboxSize,
	}, app.surface, app.clients, clk, logger)
	app.worker.Start()

	initial, err := domain.ParsePermissionState(cfg.Notifications.InitialPermission)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("invalid initial permission: %w", err)
	}
	app.host = permission.NewPromptHost(cfg.Notifications.Enabled, initial)
	app.gatekeeper = permission.NewGatekeeper(app.host, cfg.Notifications.PromptTimeout, logger)

	// Interfaces stay nil, not typed-nil, when push is disabled.
	var pushScheduler channel.PushScheduler
	var subscriptions reminder.Subscriptions
	if cfg.Push.Enabled {
		app.push, err = onesignal.Initialize(cfg.Push, logger)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize push client: %w", err)
		}
		pushScheduler = app.push
		subscriptions = app.push
		logger.Info("remote push initialized", "base_url", cfg.Push.BaseURL)
	}

	app.foreground = channel.NewForeground(
		clk,
		channel.NewBellChime(chime, cfg.Notifications.Sound),
		app.surface,
		app.surface,
		app.gatekeeper,
		cfg.Notifications.Origin,
		logger,
	)

	tracker := reminder.NewTracker(cfg.Reminder.HistorySize, clk, logger)
	app.emitter.RegisterHandlerFor(tracker, events.TypeNotificationPresented)

	app.policy, err = reminder.NewPolicy(reminder.Deps{
		Gatekeeper:    app.gatekeeper,
		Persistent:    channel.NewPersistent(app.worker, cfg.Reminder.HandshakeTimeout, cfg.Notifications.Origin, logger),
		Remote:        channel.NewRemotePush(pushScheduler, cfg.Push.SafetyBuffer, clk, logger),
		Foreground:    app.foreground,
		Subscriptions: subscriptions,
		Tracker:       tracker,
		Emitter:       app.emitter,
		Clock:         clk,
	}, reminder.Config{
		SubscriptionRetries:       cfg.Reminder.SubscriptionRetries,
		SubscriptionPromptTimeout: cfg.Reminder.SubscriptionPromptTimeout,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create escalation policy: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Pending
// foreground reminders are lost; persistent ones about to fire get a short
// grace period.
func (app *application) cleanup() {
	if app.foreground != nil {
		app.foreground.Stop()
	}

	if app.worker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), workerStopTimeout)
		if err := app.worker.Stop(ctx); err != nil {
			app.logger.Warn("background worker stopped with pending reminders", "error", err)
		}
		cancel()
	}

	if app.stores != nil && app.stores.db != nil {
		if err := app.stores.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
