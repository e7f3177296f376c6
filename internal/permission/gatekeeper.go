package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
)

type gestureKey struct{}

// WithUserGesture marks ctx as originating from a direct user action. Hosts
// refuse to show consent prompts outside of one.
func WithUserGesture(ctx context.Context) context.Context {
	return context.WithValue(ctx, gestureKey{}, true)
}

// HasUserGesture reports whether ctx was marked by WithUserGesture.
func HasUserGesture(ctx context.Context) bool {
	v, _ := ctx.Value(gestureKey{}).(bool)
	return v
}

// Gatekeeper answers whether reminders may raise notifications.
type Gatekeeper struct {
	host          Host
	promptTimeout time.Duration
	logger        *slog.Logger
}

// NewGatekeeper creates a Gatekeeper over host. promptTimeout bounds how
// long Request waits for the user.
func NewGatekeeper(host Host, promptTimeout time.Duration, logger *slog.Logger) *Gatekeeper {
	return &Gatekeeper{
		host:          host,
		promptTimeout: promptTimeout,
		logger:        logger.With("component", "permission_gatekeeper"),
	}
}

// Query returns the current permission state. A host without notification
// support always reads as denied.
func (g *Gatekeeper) Query() domain.PermissionState {
	if g.host == nil || !g.host.Supported() {
		return domain.PermissionDenied
	}
	return g.host.Permission()
}

// Request prompts the user when no decision has been made yet. It returns
// at once when the state is already granted or denied, and it does not
// prompt unless ctx carries a user gesture. Request never fails: prompt
// errors are logged and the current state is returned.
func (g *Gatekeeper) Request(ctx context.Context) domain.PermissionState {
	state := g.Query()
	if state.Decided() {
		return state
	}

	if !HasUserGesture(ctx) {
		g.logger.Debug("not prompting for permission outside a user action")
		return state
	}

	if g.promptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.promptTimeout)
		defer cancel()
	}

	g.logger.Info("prompting user for notification permission")
	answer, err := g.host.Prompt(ctx)
	if err != nil {
		g.logger.Warn("permission prompt did not complete", "error", err)
		return g.Query()
	}

	g.logger.Info("permission prompt answered", "state", answer)
	return answer
}
