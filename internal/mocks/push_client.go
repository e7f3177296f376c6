package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/onesignal"
)

// MockPushClient implements the remote push client interfaces for testing
type MockPushClient struct {
	// Function fields for customizable behavior
	ScheduleNotificationFn func(ctx context.Context, n onesignal.ScheduledNotification) (string, error)
	RequestPermissionFn    func(ctx context.Context) error

	// Default response values
	NotificationID string
	ScheduleErr    error

	// SubscribeOnRequest is installed as the subscription when
	// RequestPermission is called and no RequestPermissionFn is set.
	SubscribeOnRequest domain.SubscriptionID

	mu           sync.Mutex
	subscription domain.SubscriptionID

	// Call tracking for verification
	ScheduleCalls struct {
		mu            sync.Mutex
		Count         int
		Notifications []onesignal.ScheduledNotification
	}

	RequestPermissionCalls struct {
		mu    sync.Mutex
		Count int
	}
}

// NewMockPushClient creates a mock with an optional current subscription.
func NewMockPushClient(subscription domain.SubscriptionID) *MockPushClient {
	return &MockPushClient{subscription: subscription, NotificationID: "mock-notification"}
}

// SubscriptionID implements the subscription lookup
func (m *MockPushClient) SubscriptionID() (domain.SubscriptionID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscription, m.subscription != ""
}

// SetSubscription replaces the current subscription.
func (m *MockPushClient) SetSubscription(id domain.SubscriptionID) {
	m.mu.Lock()
	m.subscription = id
	m.mu.Unlock()
}

// Register installs id as the subscription.
func (m *MockPushClient) Register(id domain.SubscriptionID) {
	m.SetSubscription(id)
}

// Unregister forgets the subscription.
func (m *MockPushClient) Unregister() {
	m.SetSubscription("")
}

// RequestPermission implements the subscription prompt
func (m *MockPushClient) RequestPermission(ctx context.Context) error {
	m.RequestPermissionCalls.mu.Lock()
	m.RequestPermissionCalls.Count++
	m.RequestPermissionCalls.mu.Unlock()

	if m.RequestPermissionFn != nil {
		return m.RequestPermissionFn(ctx)
	}
	if m.SubscribeOnRequest != "" {
		m.SetSubscription(m.SubscribeOnRequest)
	}
	return nil
}

// ScheduleNotification implements channel.PushScheduler
func (m *MockPushClient) ScheduleNotification(
	ctx context.Context,
	n onesignal.ScheduledNotification,
) (string, error) {
	m.ScheduleCalls.mu.Lock()
	m.ScheduleCalls.Count++
	m.ScheduleCalls.Notifications = append(m.ScheduleCalls.Notifications, n)
	m.ScheduleCalls.mu.Unlock()

	if m.ScheduleNotificationFn != nil {
		return m.ScheduleNotificationFn(ctx, n)
	}
	if m.ScheduleErr != nil {
		return "", m.ScheduleErr
	}
	return m.NotificationID, nil
}

// ScheduleCount returns the number of ScheduleNotification calls.
func (m *MockPushClient) ScheduleCount() int {
	m.ScheduleCalls.mu.Lock()
	defer m.ScheduleCalls.mu.Unlock()
	return m.ScheduleCalls.Count
}

// RequestPermissionCount returns the number of RequestPermission calls.
func (m *MockPushClient) RequestPermissionCount() int {
	m.RequestPermissionCalls.mu.Lock()
	defer m.RequestPermissionCalls.mu.Unlock()
	return m.RequestPermissionCalls.Count
}
