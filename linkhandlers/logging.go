package linkhandlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/vitalvas/deeplink/deeplink"
)

// LoggingConfig configures the Logging middleware behaviour.
type LoggingConfig struct {
	// Logger receives one record per handler invocation. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Level is used for claimed and declined matches. Handler errors are
	// always logged at slog.LevelWarn.
	Level slog.Level
}

// LoggingMiddleware returns a middleware that logs the outcome of every
// handler invocation with the template, the index of the registration and
// the handler duration. The dispatch ID is included when present.
func LoggingMiddleware(cfg LoggingConfig) deeplink.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := cfg.Level

	return func(next deeplink.Invoker) deeplink.Invoker {
		return func(ctx context.Context, m *deeplink.Match) (bool, error) {
			start := time.Now()
			claimed, err := next(ctx, m)

			attrs := []slog.Attr{
				slog.String("template", m.Registration.String()),
				slog.Int("index", m.Index),
				slog.String("outcome", outcome(claimed, err)),
				slog.Duration("duration", time.Since(start)),
			}
			if id := DispatchIDFromContext(ctx); id != "" {
				attrs = append(attrs, slog.String("dispatch_id", id))
			}
			if name := m.Registration.GetName(); name != "" {
				attrs = append(attrs, slog.String("route", name))
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelWarn, "deeplink handler failed", attrs...)
			} else {
				logger.LogAttrs(ctx, level, "deeplink handled", attrs...)
			}

			return claimed, err
		}
	}
}

// outcome names the result of a handler invocation. The names are shared
// by the logging and metrics middleware.
func outcome(claimed bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case claimed:
		return "claimed"
	default:
		return "declined"
	}
}
