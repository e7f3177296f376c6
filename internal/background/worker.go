package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/notify"
)

// Common errors returned by the Worker
var (
	ErrWorkerStopped = errors.New("background worker is stopped")
	ErrInboxFull     = errors.New("background worker inbox is full")
)

// SourcePersistent identifies notifications shown by the worker.
const SourcePersistent = "persistent"

// Config holds configuration for the worker.
type Config struct {
	// ActivationDelay is how long the worker takes after Start before it
	// controls the application. Zero activates immediately.
	ActivationDelay time.Duration

	// InboxSize bounds the number of messages waiting to be handled.
	InboxSize int
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{InboxSize: 64}
}

// Surface is what the worker needs from the notification surface.
type Surface interface {
	notify.Presenter
	Close(tag string) bool
}

// Worker is the background execution context for persistent reminders.
// It outlives any single request, receives messages only through Post and
// keeps a keepalive token for every timer it has pending.
type Worker struct {
	config  Config
	inbox   chan Message
	surface Surface
	clients *notify.Clients
	clock   clock.Clock
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	loop   sync.WaitGroup

	ready     chan struct{}
	readyOnce sync.Once

	// keepalive is held from message receipt until the notification is shown.
	keepalive sync.WaitGroup

	mu          sync.Mutex
	started     bool
	stopped     bool
	nextTimer   uint64
	timers      map[uint64]clock.Timer
	outstanding int
}

// NewWorker creates a worker that is not yet running.
func NewWorker(
	config Config,
	surface Surface,
	clients *notify.Clients,
	clk clock.Clock,
	logger *slog.Logger,
) *Worker {
	if config.InboxSize <= 0 {
		config.InboxSize = DefaultConfig().InboxSize
		logger.Warn("invalid inbox size specified, using default",
			"default_size", config.InboxSize)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		config:  config,
		inbox:   make(chan Message, config.InboxSize),
		surface: surface,
		clients: clients,
		clock:   clk,
		logger:  logger.With("component", "background_worker"),
		ctx:     ctx,
		cancel:  cancel,
		ready:   make(chan struct{}),
		timers:  make(map[uint64]clock.Timer),
	}
}

// Start installs the worker. It begins controlling the application once
// the activation delay has passed.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	w.loop.Add(1)
	go w.run()

	if w.config.ActivationDelay > 0 {
		w.clock.AfterFunc(w.config.ActivationDelay, w.activate)
		w.logger.Info("background worker installed",
			"activation_delay", w.config.ActivationDelay.String())
		return
	}
	w.activate()
}

func (w *Worker) activate() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	w.readyOnce.Do(func() {
		close(w.ready)
		w.logger.Info("background worker activated")
	})
}

// Ready is closed once the worker controls the application.
func (w *Worker) Ready() <-chan struct{} {
	return w.ready
}

// Controlling reports whether the worker is active and accepting messages.
func (w *Worker) Controlling() bool {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return false
	}

	select {
	case <-w.ready:
		return true
	default:
		return false
	}
}

// Post delivers a message to the worker without waiting for it to be
// handled.
func (w *Worker) Post(msg Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || !w.started {
		return ErrWorkerStopped
	}

	select {
	case w.inbox <- msg:
		w.logger.Debug("message posted",
			"type", msg.Type,
			"tag", msg.Tag,
			"inbox_len", len(w.inbox),
			"inbox_cap", cap(w.inbox))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrInboxFull, cap(w.inbox))
	}
}

// Outstanding returns the number of keepalive tokens currently held.
func (w *Worker) Outstanding() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outstanding
}

func (w *Worker) run() {
	defer w.loop.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case msg := <-w.inbox:
			w.handle(msg)
		}
	}
}

// drain handles messages accepted before Stop. Post refuses new ones once
// stopped is set, so the inbox only shrinks here.
func (w *Worker) drain() {
	drained := 0
	for {
		select {
		case msg := <-w.inbox:
			w.handle(msg)
			drained++
		default:
			if drained > 0 {
				w.logger.Info("handled queued messages during stop", "count", drained)
			}
			return
		}
	}
}

func (w *Worker) handle(msg Message) {
	switch msg.Type {
	case TypeScheduleNotification:
		w.schedule(msg)
	default:
		w.logger.Warn("ignoring unknown message", "type", msg.Type)
	}
}

func (w *Worker) schedule(msg Message) {
	w.mu.Lock()
	w.nextTimer++
	id := w.nextTimer
	w.outstanding++
	w.keepalive.Add(1)
	// Registered before the timer exists so a zero delay cannot fire first.
	w.timers[id] = nil
	w.mu.Unlock()

	timer := w.clock.AfterFunc(msg.Delay(), func() { w.fire(id, msg) })

	w.mu.Lock()
	if _, pending := w.timers[id]; pending {
		w.timers[id] = timer
	}
	w.mu.Unlock()

	w.logger.Info("notification scheduled",
		"tag", msg.Tag,
		"delay_ms", msg.DelayMs)
}

func (w *Worker) fire(id uint64, msg Message) {
	if !w.take(id) {
		return
	}
	defer w.release()

	if err := w.surface.Show(context.Background(), SourcePersistent, msg.notification()); err != nil {
		w.logger.Error("failed to show notification", "tag", msg.Tag, "error", err)
	}
}

// take removes a pending timer. Only the caller that removed it may
// release its keepalive token.
func (w *Worker) take(id uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.timers[id]; !ok {
		return false
	}
	delete(w.timers, id)
	return true
}

func (w *Worker) release() {
	w.mu.Lock()
	w.outstanding--
	w.mu.Unlock()
	w.keepalive.Done()
}

// Stop stops accepting messages, schedules any still in the inbox and waits
// for pending notifications to be shown. When ctx ends first the remaining
// timers are dropped and ctx.Err() is returned.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	w.cancel()
	w.loop.Wait()

	done := make(chan struct{})
	go func() {
		w.keepalive.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("background worker stopped")
		return nil
	case <-ctx.Done():
	}

	dropped := w.dropTimers()
	<-done
	w.logger.Warn("background worker stopped with pending notifications", "dropped", dropped)
	return ctx.Err()
}

func (w *Worker) dropTimers() int {
	w.mu.Lock()
	ids := make([]uint64, 0, len(w.timers))
	for id, t := range w.timers {
		if t != nil {
			t.Stop()
		}
		ids = append(ids, id)
	}
	w.mu.Unlock()

	dropped := 0
	for _, id := range ids {
		if w.take(id) {
			w.release()
			dropped++
		}
	}
	return dropped
}
