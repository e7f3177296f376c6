package channel

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(t *testing.T, taskID, text string, delay time.Duration) domain.ReminderRequest {
	t.Helper()
	req, err := domain.NewReminderRequest(domain.Task{ID: taskID, Text: text}, delay, testNow)
	require.NoError(t, err)
	return req
}
