package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/remind-api/internal/api/shared"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seen string
	handler := Trace(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

	require.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get(TraceIDHeader))
	assert.Contains(t, buf.String(), "request started")
	assert.Contains(t, buf.String(), "msg=\"inside handler\" trace_id="+seen)
}

func TestTrace_ReusesCallerTraceID(t *testing.T) {
	var seen string
	handler := Trace(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(TraceIDHeader, "upstream-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-42", seen)
	assert.Equal(t, "upstream-42", rec.Header().Get(TraceIDHeader))
}
