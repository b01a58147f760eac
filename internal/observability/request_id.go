package observability

import (
	"context"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID on inbound responses and on calls
// to the prediction service.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func NewRequestID() string {
	return uuid.NewString()
}

// RequestIDOrNew returns candidate when it is a well-formed UUID and a fresh
// ID otherwise.
func RequestIDOrNew(candidate string) string {
	if _, err := uuid.Parse(candidate); err != nil {
		return NewRequestID()
	}
	return candidate
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns "" when ctx carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
