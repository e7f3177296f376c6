package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/redact"
)

// ErrNotConfigured is returned by Initialize when the app id or REST key
// is missing.
var ErrNotConfigured = errors.New("onesignal is not configured")

// maxErrorBody limits how much of an error response is read.
const maxErrorBody = 64 << 10

// ScheduledNotification is a push message to deliver at SendAfter.
type ScheduledNotification struct {
	SubscriptionID domain.SubscriptionID
	Heading        string
	Content        string
	SendAfter      time.Time
}

// APIError is a structured rejection returned by the OneSignal API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("onesignal rejected notification (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap classifies every API rejection as a delivery rejection.
func (e *APIError) Unwrap() error {
	return domain.ErrDeliveryRejected
}

// Client talks to the OneSignal REST API and holds the subscription id the
// user registered with.
type Client struct {
	appID    string
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	logger   *slog.Logger

	mu           sync.Mutex
	subscription domain.SubscriptionID
	registered   chan struct{}
}

// Initialize creates the client once at process start.
func Initialize(cfg config.PushConfig, logger *slog.Logger) (*Client, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	language := cfg.Language
	if language == "" {
		language = "en"
	}

	logger = logger.With("component", "onesignal")
	logger.Info("onesignal client initialized",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout.String())

	return &Client{
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   language,
		http:       httpClient,
		logger:     logger,
		registered: make(chan struct{}),
	}, nil
}

// SubscriptionID returns the current subscription, if any.
func (c *Client) SubscriptionID() (domain.SubscriptionID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscription, c.subscription != ""
}

// Register records the subscription id issued to the user's device and
// wakes any pending RequestPermission call.
func (c *Client) Register(id domain.SubscriptionID) {
	c.mu.Lock()
	c.subscription = id
	close(c.registered)
	c.registered = make(chan struct{})
	c.mu.Unlock()

	c.logger.Info("push subscription registered")
}

// Unregister forgets the subscription.
func (c *Client) Unregister() {
	c.mu.Lock()
	had := c.subscription != ""
	c.subscription = ""
	c.mu.Unlock()

	if had {
		c.logger.Info("push subscription removed")
	}
}

// RequestPermission waits until the user has registered a subscription or
// ctx ends.
func (c *Client) RequestPermission(ctx context.Context) error {
	c.mu.Lock()
	if c.subscription != "" {
		c.mu.Unlock()
		return nil
	}
	registered := c.registered
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "waiting for push subscription")

	select {
	case <-registered:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type createNotificationRequest struct {
	AppID                  string            `json:"app_id"`
	IncludeSubscriptionIDs []string          `json:"include_subscription_ids"`
	Contents               map[string]string `json:"contents"`
	Headings               map[string]string `json:"headings"`
	SendAfter              string            `json:"send_after"`
}

type createNotificationResponse struct {
	ID     string          `json:"id"`
	Errors json.RawMessage `json:"errors"`
}

// ScheduleNotification asks OneSignal to deliver n at n.SendAfter and
// returns the notification id. It makes exactly one request.
func (c *Client) ScheduleNotification(ctx context.Context, n ScheduledNotification) (string, error) {
	body := createNotificationRequest{
		AppID:                  c.appID,
		IncludeSubscriptionIDs: []string{string(n.SubscriptionID)},
		Contents:               map[string]string{c.language: n.Content},
		Headings:               map[string]string{c.language: n.Heading},
		SendAfter:              FormatSendAfter(n.SendAfter),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "push request failed", "error", redact.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", domain.ErrTransportFailure, err)
	}

	var parsed createNotificationResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if decodeErr == nil {
		if msg, ok := firstError(parsed.Errors); ok {
			return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %s", http.StatusText(resp.StatusCode)),
		}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: decoding response: %w", domain.ErrTransportFailure, decodeErr)
	}

	c.logger.InfoContext(ctx, "push notification scheduled",
		"notification_id", parsed.ID,
		"send_after", body.SendAfter)
	return parsed.ID, nil
}

// FormatSendAfter renders t as an absolute UTC timestamp.
func FormatSendAfter(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// firstError extracts the first message from an errors field, which the
// API sends either as an array of strings or as an object.
func firstError(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", false
		}
		return list[0], true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if len(obj) == 0 {
			return "", false
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var s string
		if err := json.Unmarshal(obj[keys[0]], &s); err == nil {
			return s, true
		}
		return fmt.Sprintf("%s: %s", keys[0], string(obj[keys[0]])), true
	}

	return string(raw), true
}
