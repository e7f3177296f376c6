package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log line must be JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSetupWithWriterRespectsLevel(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	l := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, &buf)

	l.Info("dropped")
	l.Warn("kept", "component", "test")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "test", entries[0]["component"])

	// Setup installs the logger as the process default.
	slog.Error("via default")
	assert.Len(t, decodeLines(t, &buf), 2)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range tests {
		got, ok := logger.ParseLevel(tc.name)
		assert.Equal(t, tc.want, got, tc.name)
		assert.Equal(t, tc.valid, ok, tc.name)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil)).With("trace_id", "abc")

	ctx := logger.WithLogger(context.Background(), l)
	logger.FromContext(ctx).Info("hello")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])

	def := logger.Discard()
	assert.Same(t, def, logger.FromContextOrDefault(context.Background(), def))
}
