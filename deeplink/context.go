package deeplink

import (
	"context"
	"errors"
	"net/url"
)

// matchContextKey is an unexported type for the single context key.
type matchContextKey struct{}

// ctxKey stores the current *Match.
var ctxKey = matchContextKey{}

// Match describes a structural match handed to middleware and handlers.
type Match struct {
	// URL is the URL passed to Parse.
	URL *url.URL
	// Relative is the relative reference extracted from URL.
	Relative string
	// Registration is the registration whose template matched.
	Registration *Registration
	// Index is the position of Registration in the dispatcher.
	Index int
	// Value is the bound record. Its dynamic type is the record type of
	// the registration.
	Value any
}

// CurrentMatch returns the match being handled, if any. It only works
// inside middleware and handlers invoked by a Dispatcher.
func CurrentMatch(ctx context.Context) *Match {
	if m, ok := ctx.Value(ctxKey).(*Match); ok {
		return m
	}
	return nil
}

// WithMatch returns a copy of ctx carrying m. This is intended for testing
// handlers.
func WithMatch(ctx context.Context, m *Match) context.Context {
	return context.WithValue(ctx, ctxKey, m)
}

// Invoker runs the handler of a matched registration.
type Invoker func(ctx context.Context, m *Match) (bool, error)

// MiddlewareFunc receives an Invoker and returns another Invoker. It can be
// used to wrap handlers with additional behavior such as logging or
// recovery.
type MiddlewareFunc func(Invoker) Invoker

// Middleware allows MiddlewareFunc to implement the Middleware interface.
func (mw MiddlewareFunc) Middleware(next Invoker) Invoker {
	return mw(next)
}

// Middleware is implemented by types that wrap an Invoker.
type Middleware interface {
	Middleware(next Invoker) Invoker
}

// WalkFunc is the type of the function called for each registration visited
// by Walk.
type WalkFunc func(reg *Registration, index int) error

// SkipRest is used as a return value from WalkFunc to stop the walk
// without reporting an error.
var SkipRest = errors.New("skip remaining registrations")
