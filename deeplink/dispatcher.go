package deeplink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Dispatcher holds an ordered list of registrations and dispatches URLs to
// the first one whose template matches and whose handler claims the match.
//
//	d := deeplink.New()
//	deeplink.RegisterFunc(d, deeplink.MustParse[Artist]("/artist/{slug}/{id}"), Artist{},
//	    func(ctx context.Context, u *url.URL, a Artist) (bool, error) {
//	        return true, openArtist(a.ID)
//	    })
//	err := d.ParseString(ctx, "https://example.com/artist/metallica/123")
//
// Registration and Use must complete before Parse is called concurrently.
type Dispatcher struct {
	registrations []*Registration
	middlewares   []MiddlewareFunc

	// invokerCache caches the middleware-wrapped invoker per registration
	// to avoid re-wrapping on every dispatch.
	invokerCache sync.Map // map[*Registration]Invoker

	hooks  hooks
	logger *slog.Logger
}

// New returns a new dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register appends a registration of tpl with seed and h.
func Register[T any](d *Dispatcher, tpl *Template[T], seed T, h Handler[T]) *Dispatcher {
	return d.Add(tpl.Handle(seed, h))
}

// RegisterFunc is like Register with a function handler.
func RegisterFunc[T any](d *Dispatcher, tpl *Template[T], seed T, fn func(ctx context.Context, u *url.URL, v T) (bool, error)) *Dispatcher {
	return d.Add(tpl.Handle(seed, HandlerFunc[T](fn)))
}

// RegisterAll appends one registration per template, in order, all sharing
// seed and h.
func RegisterAll[T any](d *Dispatcher, tpls []*Template[T], seed T, h Handler[T]) *Dispatcher {
	for _, tpl := range tpls {
		d.Add(tpl.Handle(seed, h))
	}
	return d
}

// Add appends registrations in order.
func (d *Dispatcher) Add(regs ...*Registration) *Dispatcher {
	d.registrations = append(d.registrations, regs...)
	return d
}

// Use appends middleware to the chain. Middleware wraps matched handlers
// only, in the order added.
func (d *Dispatcher) Use(mwf ...MiddlewareFunc) {
	d.middlewares = append(d.middlewares, mwf...)
	d.invokerCache.Clear()
}

// Len returns the number of registrations.
func (d *Dispatcher) Len() int {
	return len(d.registrations)
}

// Lookup returns the first registration whose canonical description equals
// tpl.String().
func (d *Dispatcher) Lookup(tpl fmt.Stringer) (*Registration, bool) {
	i := d.indexOf(tpl.String())
	if i < 0 {
		return nil, false
	}
	return d.registrations[i], true
}

// Get returns the first registration with the given name.
func (d *Dispatcher) Get(name string) *Registration {
	for _, reg := range d.registrations {
		if reg.name == name {
			return reg
		}
	}
	return nil
}

// Walk calls walkFn for every registration in order. Returning SkipRest
// stops the walk without error.
func (d *Dispatcher) Walk(walkFn WalkFunc) error {
	for i, reg := range d.registrations {
		err := walkFn(reg, i)
		if err == SkipRest {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) indexOf(description string) int {
	for i, reg := range d.registrations {
		if reg.description == description {
			return i
		}
	}
	return -1
}

// Parse dispatches u to the first registration that matches and claims it.
// Match failures, declined matches and handler errors are collected and
// returned in a *NoMatchError when nothing claims u. A URL without a
// relative reference fails immediately with *MalformedURLError.
func (d *Dispatcher) Parse(ctx context.Context, u *url.URL) error {
	rel, err := RelativeReference(u)
	if err != nil {
		return err
	}

	_, err = d.dispatch(ctx, u, rel, d.registrations)
	return err
}

// ParseString parses raw with url.Parse and dispatches the result.
func (d *Dispatcher) ParseString(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &MalformedURLError{URL: raw, Err: err}
	}
	return d.Parse(ctx, u)
}

// dispatch runs the ordered scan over regs and returns the registration
// that claimed u.
func (d *Dispatcher) dispatch(ctx context.Context, u *url.URL, rel string, regs []*Registration) (*Registration, error) {
	errs := make([]error, 0, len(regs))

	for i, reg := range regs {
		v, err := reg.match(rel)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		m := &Match{
			URL:          u,
			Relative:     rel,
			Registration: reg,
			Index:        i,
			Value:        v,
		}
		for _, fn := range d.hooks.onMatch {
			fn(ctx, m)
		}

		start := time.Now()
		claimed, err := d.invoker(reg)(WithMatch(ctx, m), m)

		var failure error
		switch {
		case err != nil:
			failure = &HandlerError{Template: reg.description, Err: err}
		case !claimed:
			failure = &RejectedError{Template: reg.description}
		}

		if failure != nil {
			d.logger.DebugContext(ctx, "deeplink registration declined",
				slog.String("template", reg.description),
				slog.Int("index", i),
				slog.String("error", failure.Error()))
			for _, fn := range d.hooks.onReject {
				fn(ctx, m, failure)
			}
			errs = append(errs, failure)
			continue
		}

		duration := time.Since(start)
		d.logger.DebugContext(ctx, "deeplink claimed",
			slog.String("template", reg.description),
			slog.Int("index", i),
			slog.Duration("duration", duration))
		for _, fn := range d.hooks.onClaim {
			fn(ctx, m, duration)
		}
		return reg, nil
	}

	nm := &NoMatchError{URL: u, Errors: errs}
	d.logger.DebugContext(ctx, "deeplink not matched",
		slog.String("url", u.String()),
		slog.Int("attempts", len(errs)))
	for _, fn := range d.hooks.onNoMatch {
		fn(ctx, u, nm)
	}
	return nil, nm
}

// invoker returns the middleware-wrapped invoker of reg.
func (d *Dispatcher) invoker(reg *Registration) Invoker {
	if len(d.middlewares) == 0 {
		return reg.call
	}
	if reg.ephemeral {
		return d.applyMiddleware(reg.call)
	}
	if cached, ok := d.invokerCache.Load(reg); ok {
		return cached.(Invoker)
	}

	wrapped := d.applyMiddleware(reg.call)
	d.invokerCache.Store(reg, wrapped)
	return wrapped
}

// applyMiddleware wraps the invoker with all registered middleware.
func (d *Dispatcher) applyMiddleware(next Invoker) Invoker {
	for i := len(d.middlewares) - 1; i >= 0; i-- {
		next = d.middlewares[i].Middleware(next)
	}
	return next
}

// call is the innermost invoker of a registration.
func (r *Registration) call(ctx context.Context, m *Match) (bool, error) {
	return r.invoke(ctx, m.URL, m.Value)
}
