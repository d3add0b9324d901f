package linkhandlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/vitalvas/deeplink/deeplink"
)

type dispatchIDKey struct{}

// DispatchIDFromContext returns the dispatch ID stored in the context by
// DispatchIDMiddleware. Returns an empty string if no ID is present.
func DispatchIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(dispatchIDKey{}).(string); ok {
		return id
	}

	return ""
}

// WithDispatchID returns a copy of ctx carrying id. DispatchIDMiddleware
// reuses it when TrustIncoming is set.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDKey{}, id)
}

// DispatchIDConfig configures the dispatch ID middleware behaviour.
type DispatchIDConfig struct {
	// GenerateFunc is an optional callback that returns a new unique ID.
	// It receives the current match. Defaults to GenerateUUIDv4.
	GenerateFunc func(m *deeplink.Match) string

	// TrustIncoming, when true, reuses an ID already present in the
	// context instead of generating a new one.
	TrustIncoming bool
}

// DispatchIDMiddleware returns a middleware that attaches an ID to the
// context of every handler invocation.
func DispatchIDMiddleware(cfg DispatchIDConfig) deeplink.MiddlewareFunc {
	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return func(next deeplink.Invoker) deeplink.Invoker {
		return func(ctx context.Context, m *deeplink.Match) (bool, error) {
			id := ""
			if trustIncoming {
				id = DispatchIDFromContext(ctx)
			}

			if id == "" {
				id = generate(m)
			}

			if id != "" {
				ctx = WithDispatchID(ctx, id)
			}

			return next(ctx, m)
		}
	}
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.4
func GenerateUUIDv4(_ *deeplink.Match) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered:
// IDs generated later sort lexicographically after earlier ones.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.7
func GenerateUUIDv7(_ *deeplink.Match) string {
	return uuid.Must(uuid.NewV7()).String()
}
