package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header carries the request ID in and out of the service.
const Header = "X-Request-ID"

type ctxKey struct{}

// Resolve keeps a caller-supplied ID when it is a well-formed UUID and
// generates a fresh one otherwise, so arbitrary header values never reach the logs.
func Resolve(incoming string) string {
	if _, err := uuid.Parse(incoming); err == nil {
		return incoming
	}
	return uuid.NewString()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" if no request ID is attached.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
