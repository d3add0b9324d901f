package deeplink

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// OnMatchFunc is called when a template matches, before the handler runs.
type OnMatchFunc func(ctx context.Context, m *Match)

// OnClaimFunc is called after a handler claimed a match.
type OnClaimFunc func(ctx context.Context, m *Match, duration time.Duration)

// OnRejectFunc is called after a handler declined or failed. err is a
// *RejectedError or a *HandlerError.
type OnRejectFunc func(ctx context.Context, m *Match, err error)

// OnNoMatchFunc is called when no registration claimed the URL.
type OnNoMatchFunc func(ctx context.Context, u *url.URL, err *NoMatchError)

// hooks holds all configured hook functions.
type hooks struct {
	onMatch   []OnMatchFunc
	onClaim   []OnClaimFunc
	onReject  []OnRejectFunc
	onNoMatch []OnNoMatchFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for dispatch diagnostics. Defaults to a
// logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMiddleware appends middleware to the dispatcher, as Use does.
func WithMiddleware(mwf ...MiddlewareFunc) Option {
	return func(d *Dispatcher) {
		d.Use(mwf...)
	}
}

// WithRegistrations appends registrations to the dispatcher, as Add does.
func WithRegistrations(regs ...*Registration) Option {
	return func(d *Dispatcher) {
		d.Add(regs...)
	}
}

// WithOnMatch adds a hook called when a template matches, before the
// handler runs. Multiple hooks are called in order.
//
// Example:
//
//	deeplink.WithOnMatch(func(ctx context.Context, m *deeplink.Match) {
//	    logger.DebugContext(ctx, "matched", "template", m.Registration.String())
//	})
func WithOnMatch(fn OnMatchFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onMatch = append(d.hooks.onMatch, fn)
	}
}

// WithOnClaim adds a hook called after a handler claimed a match.
// Multiple hooks are called in order.
func WithOnClaim(fn OnClaimFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onClaim = append(d.hooks.onClaim, fn)
	}
}

// WithOnReject adds a hook called after a handler declined a match or
// failed. Multiple hooks are called in order.
func WithOnReject(fn OnRejectFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onReject = append(d.hooks.onReject, fn)
	}
}

// WithOnNoMatch adds a hook called when no registration claimed the URL.
// Multiple hooks are called in order.
//
// Example:
//
//	deeplink.WithOnNoMatch(func(ctx context.Context, u *url.URL, err *deeplink.NoMatchError) {
//	    metrics.Incr("deeplink.unmatched")
//	})
func WithOnNoMatch(fn OnNoMatchFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onNoMatch = append(d.hooks.onNoMatch, fn)
	}
}
