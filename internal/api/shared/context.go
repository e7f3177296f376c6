package shared

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContextKey namespaces request context values set by the API layer.
type ContextKey string

// TraceIDKey is the context key for the request trace ID.
const TraceIDKey ContextKey = "traceID"

// MaxTraceIDLength caps trace IDs accepted from callers.
const MaxTraceIDLength = 64

// NewTraceID returns a random 32 character hex ID.
func NewTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// SetTraceID stores a fresh trace ID in ctx.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, NewTraceID())
}

// WithTraceID stores id in ctx. An empty or oversized id is replaced by a
// fresh one.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" || len(id) > MaxTraceIDLength {
		return SetTraceID(ctx)
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID returns the trace ID in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
