package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header carries the request ID on outgoing backend calls.
const Header = "X-Request-ID"

// contextKey is a custom type to avoid context key collisions
type contextKey string

const requestIDContextKey contextKey = "request_id"

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, id)
}

// FromContext retrieves the request ID, or "" when none is set.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// Ensure returns ctx unchanged when it already carries an ID, otherwise a
// derived context with a fresh UUID.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return With(ctx, id), id
}
