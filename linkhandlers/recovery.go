package linkhandlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitalvas/deeplink/deeplink"
)

// ErrPanic is matched by errors returned from RecoveryMiddleware when a
// handler panics.
var ErrPanic = errors.New("linkhandlers: handler panicked")

// PanicError carries the value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("linkhandlers: handler panicked: %v", e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}

// Unwrap returns the recovered value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// LogFunc is an optional callback invoked with the match and the
	// recovered value when a panic occurs. When nil, no logging is performed.
	LogFunc func(ctx context.Context, m *deeplink.Match, v any)
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers. A panic is turned into a *PanicError, so the
// dispatcher records it and moves on to the next registration.
func RecoveryMiddleware(cfg RecoveryConfig) deeplink.MiddlewareFunc {
	return func(next deeplink.Invoker) deeplink.Invoker {
		return func(ctx context.Context, m *deeplink.Match) (claimed bool, err error) {
			defer func() {
				if v := recover(); v != nil {
					if cfg.LogFunc != nil {
						cfg.LogFunc(ctx, m, v)
					}

					claimed = false
					err = &PanicError{Value: v}
				}
			}()

			return next(ctx, m)
		}
	}
}
