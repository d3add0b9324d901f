package deeplink

import (
	"context"
	"net/url"
	"reflect"
)

// Handler handles a matched URL. Returning false declines the match and
// lets the dispatcher try the next registration.
type Handler[T any] interface {
	ServeLink(ctx context.Context, u *url.URL, v T) (bool, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[T any] func(ctx context.Context, u *url.URL, v T) (bool, error)

// ServeLink calls f(ctx, u, v).
func (f HandlerFunc[T]) ServeLink(ctx context.Context, u *url.URL, v T) (bool, error) {
	return f(ctx, u, v)
}

// Registration is a template, a seed value and a handler with the record
// type erased, ready to be added to a Dispatcher.
type Registration struct {
	name        string
	description string
	pattern     string
	fields      []string
	valueType   reflect.Type

	// match binds rel into a fresh copy of the seed.
	match func(rel string) (any, error)
	// invoke calls the typed handler.
	invoke func(ctx context.Context, u *url.URL, v any) (bool, error)

	// ephemeral registrations bypass the invoker cache.
	ephemeral bool
}

// Handle returns a registration that binds matches into a copy of seed
// and passes them to h.
func (t *Template[T]) Handle(seed T, h Handler[T]) *Registration {
	return &Registration{
		description: t.description,
		pattern:     t.pattern,
		fields:      t.fields,
		valueType:   reflect.TypeFor[T](),
		match: func(rel string) (any, error) {
			v := fresh(seed)
			if err := t.MatchString(rel, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		invoke: func(ctx context.Context, u *url.URL, v any) (bool, error) {
			return h.ServeLink(ctx, u, v.(T))
		},
	}
}

// HandleFunc is like Handle with the zero value of T as the seed.
func (t *Template[T]) HandleFunc(fn func(ctx context.Context, u *url.URL, v T) (bool, error)) *Registration {
	var seed T
	return t.Handle(seed, HandlerFunc[T](fn))
}

// fresh returns a copy of seed that does not share memory with it when T
// implements Cloner.
func fresh[T any](seed T) T {
	if c, ok := any(seed).(Cloner[T]); ok {
		return c.Clone()
	}
	return seed
}

// Name sets the name of the registration. Names are used by Dispatcher.Get.
func (r *Registration) Name(name string) *Registration {
	r.name = name
	return r
}

// GetName returns the name of the registration, if any.
func (r *Registration) GetName() string {
	return r.name
}

// String returns the canonical description of the template.
func (r *Registration) String() string {
	return r.description
}

// Pattern returns the template in placeholder syntax.
func (r *Registration) Pattern() string {
	return r.pattern
}

// Fields returns the argument field paths of the template.
func (r *Registration) Fields() []string {
	return append([]string(nil), r.fields...)
}

// ValueType returns the record type the registration binds into.
func (r *Registration) ValueType() reflect.Type {
	return r.valueType
}
