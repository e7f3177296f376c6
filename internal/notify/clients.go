package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/clock"
)

// Client is an open window of the application.
type Client struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	Focused      bool      `json:"focused"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Clients tracks the open windows of the application, in registration
// order.
type Clients struct {
	mu      sync.Mutex
	clients []*Client
	clock   clock.Clock
}

// NewClients creates an empty registry.
func NewClients(clk clock.Clock) *Clients {
	return &Clients{clock: clk}
}

// Register records a newly opened window.
func (c *Clients) Register(url string) Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	client := &Client{ID: uuid.New(), URL: url, RegisteredAt: c.clock.Now()}
	c.clients = append(c.clients, client)
	return *client
}

// Unregister forgets a closed window.
func (c *Clients) Unregister(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if client.ID == id {
			c.clients = append(c.clients[:i], c.clients[i+1:]...)
			return true
		}
	}
	return false
}

// MatchAll returns every open window.
func (c *Clients) MatchAll() []Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Client, 0, len(c.clients))
	for _, client := range c.clients {
		out = append(out, *client)
	}
	return out
}

// Focus marks the window with id as focused and every other one as not.
func (c *Clients) Focus(id uuid.UUID) (Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var found *Client
	for _, client := range c.clients {
		client.Focused = client.ID == id
		if client.Focused {
			found = client
		}
	}
	if found == nil {
		return Client{}, false
	}
	return *found, true
}
