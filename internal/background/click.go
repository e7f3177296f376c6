package background

import (
	"context"

	"github.com/phrazzld/remind-api/internal/notify"
)

// Click actions.
const (
	ActionFocus = "focus"
	ActionOpen  = "open"
)

// RootPath is opened when a notification is clicked with no window open.
const RootPath = "/"

// ClickResult says what the platform should do after a notification click.
type ClickResult struct {
	Action string         `json:"action"`
	Client *notify.Client `json:"client,omitempty"`
	URL    string         `json:"url,omitempty"`
}

// HandleClick closes the clicked notification and focuses the first open
// window, or asks for a new one at the root path.
func (w *Worker) HandleClick(ctx context.Context, tag string) ClickResult {
	closed := w.surface.Close(tag)

	for _, c := range w.clients.MatchAll() {
		focused, ok := w.clients.Focus(c.ID)
		if !ok {
			continue
		}
		w.logger.InfoContext(ctx, "notification clicked",
			"tag", tag,
			"closed", closed,
			"action", ActionFocus,
			"client_id", focused.ID)
		return ClickResult{Action: ActionFocus, Client: &focused}
	}

	w.logger.InfoContext(ctx, "notification clicked",
		"tag", tag,
		"closed", closed,
		"action", ActionOpen)
	return ClickResult{Action: ActionOpen, URL: RootPath}
}
