package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/remind-api/internal/api"
	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Storage: config.StorageConfig{
			Driver: storageDriverDiskv,
			Path:   t.TempDir(),
		},
		Push: config.PushConfig{
			BaseURL:      "https://onesignal.example.com/api/v1",
			SafetyBuffer: 10 * time.Second,
			Language:     "en",
			Timeout:      2 * time.Second,
		},
		Notifications: config.NotificationsConfig{
			Enabled:           true,
			InitialPermission: "granted",
			PromptTimeout:     5 * time.Second,
			Origin:            "http://localhost:3000",
			Sound:             true,
		},
		Reminder: config.ReminderConfig{
			HandshakeTimeout:          50 * time.Millisecond,
			SubscriptionRetries:       1,
			SubscriptionPromptTimeout: 50 * time.Millisecond,
			HistorySize:               10,
			InboxSize:                 8,
		},
	}
}

type testApp struct {
	app    *application
	clock  *clock.Fake
	chime  *bytes.Buffer
	router http.Handler
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	clk := clock.NewFake(appNow)
	chime := &bytes.Buffer{}

	app, err := newApplication(context.Background(), cfg, logger.Discard(), clk, chime)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	return &testApp{app: app, clock: clk, chime: chime, router: app.setupRouter()}
}

func (ta *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func outcomeStatus(outcomes []domain.ChannelOutcome, kind domain.ChannelKind) domain.OutcomeStatus {
	for _, o := range outcomes {
		if o.Channel == kind {
			return o.Status
		}
	}
	return ""
}

func TestHealthCheck(t *testing.T) {
	ta := newTestApp(t, testConfig(t))

	rr := ta.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestNewApplication_InvalidInitialPermission(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifications.InitialPermission = "maybe"

	_, err := newApplication(context.Background(), cfg, logger.Discard(), clock.NewFake(appNow), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid initial permission")
}

func TestNewApplication_PushMissingCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Push.Enabled = true

	_, err := newApplication(context.Background(), cfg, logger.Discard(), clock.NewFake(appNow), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize push client")
}

func TestTodoLifecycle(t *testing.T) {
	ta := newTestApp(t, testConfig(t))

	rr := ta.do(t, http.MethodPost, "/api/todos", `{"text":"water plants"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[api.CreateTodoResponse](t, rr)
	assert.Nil(t, created.Reminder)

	rr = ta.do(t, http.MethodPatch, "/api/todos/"+created.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ta.do(t, http.MethodGet, "/api/todos?filter=completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[api.TodoListResponse](t, rr)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].Completed)
	assert.Equal(t, 0, list.ItemsLeft)

	rr = ta.do(t, http.MethodDelete, "/api/todos/completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[api.DeleteCompletedResponse](t, rr).Deleted)

	rr = ta.do(t, http.MethodPut, "/api/preferences/theme", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ta.do(t, http.MethodGet, "/api/preferences/theme", "")
	assert.Equal(t, "dark", decode[api.ThemeResponse](t, rr).Theme)
}

func TestReminder_GrantedUsesBackgroundWorker(t *testing.T) {
	ta := newTestApp(t, testConfig(t))

	rr := ta.do(t, http.MethodPost, "/api/todos", `{"text":"call mom","remind_in_ms":60000}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decode[api.CreateTodoResponse](t, rr)
	require.NotNil(t, created.Reminder)
	assert.Equal(t, string(domain.StateChannelArmed), created.Reminder.State)
	assert.Equal(t, domain.StatusArmed, outcomeStatus(created.Reminder.Outcomes, domain.ChannelForeground))
	assert.Equal(t, domain.StatusArmed, outcomeStatus(created.Reminder.Outcomes, domain.ChannelPersistent))
	assert.Empty(t, created.Reminder.Notice)

	// Foreground timer plus the worker's timer.
	require.Eventually(t, func() bool { return ta.clock.Pending() == 2 },
		time.Second, 5*time.Millisecond)

	ta.clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		runs := ta.app.policy.Tracker().Recent()
		return len(runs) == 1 && runs[0].State == domain.StateDelivered
	}, time.Second, 5*time.Millisecond)

	rr = ta.do(t, http.MethodGet, "/api/reminders", "")
	runs := decode[[]api.ReminderResponse](t, rr)
	require.Len(t, runs, 1)
	assert.Equal(t, created.Reminder.ID, runs[0].ID)

	rr = ta.do(t, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, rr.Code)
	notifications := decode[api.NotificationsResponse](t, rr)
	require.Len(t, notifications.Notifications, 1)
	assert.Equal(t, domain.DedupTagPrefix+created.ID, notifications.Notifications[0].Tag)
	assert.Equal(t, domain.ReminderBody("call mom"), notifications.Notifications[0].Body)
	assert.Empty(t, notifications.Alerts)
	assert.Equal(t, "\a", ta.chime.String())
}

func TestReminder_DeniedFallsBackToAlert(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifications.InitialPermission = "denied"
	ta := newTestApp(t, cfg)

	rr := ta.do(t, http.MethodPost, "/api/todos", `{"text":"stretch","remind_in_ms":1000}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decode[api.CreateTodoResponse](t, rr)
	require.NotNil(t, created.Reminder)
	assert.Equal(t, string(domain.PermissionDenied), created.Reminder.Permission)
	assert.NotEmpty(t, created.Reminder.Notice)
	require.Len(t, created.Reminder.Outcomes, 1)
	assert.Equal(t, domain.ChannelForeground, created.Reminder.Outcomes[0].Channel)

	ta.clock.Advance(time.Second)

	rr = ta.do(t, http.MethodGet, "/api/notifications", "")
	notifications := decode[api.NotificationsResponse](t, rr)
	assert.Empty(t, notifications.Notifications)
	require.Len(t, notifications.Alerts, 1)
	assert.Equal(t, domain.AlertMessage("stretch"), notifications.Alerts[0].Message)

	// Alerts are not notifications, so the run is never marked delivered.
	rr = ta.do(t, http.MethodGet, "/api/reminders", "")
	runs := decode[[]api.ReminderResponse](t, rr)
	require.Len(t, runs, 1)
	assert.Equal(t, string(domain.StateChannelArmed), runs[0].State)
}

func TestReminder_PromptAnsweredThroughPermissionEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifications.InitialPermission = "default"
	ta := newTestApp(t, cfg)

	var wg sync.WaitGroup
	var rr *httptest.ResponseRecorder
	wg.Add(1)
	go func() {
		defer wg.Done()
		rr = ta.do(t, http.MethodPost, "/api/todos", `{"text":"stand up","remind_in_ms":5000}`)
	}()

	require.Eventually(t, func() bool { return ta.app.host.Pending() },
		time.Second, 5*time.Millisecond)

	permRR := ta.do(t, http.MethodGet, "/api/permission", "")
	assert.True(t, decode[api.PermissionResponse](t, permRR).Prompting)

	permRR = ta.do(t, http.MethodPut, "/api/permission", `{"state":"granted"}`)
	require.Equal(t, http.StatusOK, permRR.Code, permRR.Body.String())

	wg.Wait()
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[api.CreateTodoResponse](t, rr)
	require.NotNil(t, created.Reminder)
	assert.Equal(t, string(domain.PermissionGranted), created.Reminder.Permission)
	assert.Equal(t, domain.StatusArmed, outcomeStatus(created.Reminder.Outcomes, domain.ChannelPersistent))
}

func TestReminder_RemotePushWhenWorkerNotControlling(t *testing.T) {
	var (
		mu       sync.Mutex
		received map[string]any
	)
	push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "/notifications", r.URL.Path)
		assert.Equal(t, "Key secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"notif-1"}`))
	}))
	defer push.Close()

	cfg := testConfig(t)
	cfg.Push.Enabled = true
	cfg.Push.AppID = "app-1"
	cfg.Push.APIKey = "secret"
	cfg.Push.BaseURL = push.URL
	// Not reached on the fake clock, so the worker never takes control.
	cfg.Reminder.ActivationDelay = time.Hour
	ta := newTestApp(t, cfg)

	rr := ta.do(t, http.MethodPut, "/api/push/subscription", `{"subscription_id":"sub-42"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ta.do(t, http.MethodPost, "/api/todos", `{"text":"pay rent","remind_in_ms":60000}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decode[api.CreateTodoResponse](t, rr)
	require.NotNil(t, created.Reminder)
	assert.Equal(t, string(domain.StateChannelArmed), created.Reminder.State)
	assert.Equal(t, domain.StatusUnavailable, outcomeStatus(created.Reminder.Outcomes, domain.ChannelPersistent))
	assert.Equal(t, domain.StatusArmed, outcomeStatus(created.Reminder.Outcomes, domain.ChannelRemotePush))

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received)
	assert.Equal(t, "app-1", received["app_id"])
	assert.Equal(t, []any{"sub-42"}, received["include_subscription_ids"])
	assert.Equal(t, "2026-05-04T10:01:10Z", received["send_after"])
}

func TestPushEndpoints_DisabledReturnsUnavailable(t *testing.T) {
	ta := newTestApp(t, testConfig(t))

	rr := ta.do(t, http.MethodPut, "/api/push/subscription", `{"subscription_id":"sub-1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = ta.do(t, http.MethodGet, "/api/push/subscription", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
