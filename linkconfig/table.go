package linkconfig

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vitalvas/deeplink/deeplink"
)

// Resolution is the result of resolving a URL against a Table.
type Resolution struct {
	Route    string        `json:"route,omitempty"`
	Template string        `json:"template"`
	Target   string        `json:"target,omitempty"`
	Vars     deeplink.Vars `json:"vars"`
}

// RouteInfo describes a compiled route.
type RouteInfo struct {
	Name        string `json:"name,omitempty"`
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
	Target      string `json:"target,omitempty"`
}

type entry struct {
	route    Route
	template *deeplink.Template[deeplink.Vars]
	target   *deeplink.Template[deeplink.Vars]
}

// Table resolves URLs against the routes of a Config. A Table is safe for
// concurrent use.
type Table struct {
	hosts      hostSet
	entries    []entry
	dispatcher *deeplink.Dispatcher
}

type resolutionKey struct{}

// Table validates c and compiles it into a dispatcher over deeplink.Vars.
// opts configure the dispatcher, for example with middleware from
// linkhandlers.
func (c *Config) Table(opts ...deeplink.Option) (*Table, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	hosts, err := newHostSet(c.Hosts)
	if err != nil {
		return nil, err
	}

	t := &Table{
		hosts:   hosts,
		entries: make([]entry, 0, len(c.Routes)),
	}

	b := deeplink.NewBuilder()
	for _, route := range c.Routes {
		tpl, target, err := route.compile()
		if err != nil {
			return nil, err
		}

		e := entry{route: route, template: tpl, target: target}
		t.entries = append(t.entries, e)

		b.Add(tpl.Handle(nil, e.handler()).Name(route.Name))
	}

	t.dispatcher = b.Build(opts...)

	return t, nil
}

// handler claims a match when every required variable is set and records
// the resolution in the context.
func (e entry) handler() deeplink.HandlerFunc[deeplink.Vars] {
	return func(ctx context.Context, _ *url.URL, vars deeplink.Vars) (bool, error) {
		for _, key := range e.route.Require {
			if vars.Get(key) == "" {
				return false, nil
			}
		}

		var target string
		if e.target != nil {
			rendered, err := e.target.Encode(vars)
			if err != nil {
				return false, err
			}
			target = rendered
		}

		if res, ok := ctx.Value(resolutionKey{}).(*Resolution); ok {
			*res = Resolution{
				Route:    e.route.Name,
				Template: e.template.Pattern(),
				Target:   target,
				Vars:     vars,
			}
		}

		return true, nil
	}
}

// Resolve dispatches u to the first route that claims it. It returns
// ErrHostNotAllowed for hosts outside the allow-list and the
// *deeplink.NoMatchError of the dispatcher when no route claims u.
func (t *Table) Resolve(ctx context.Context, u *url.URL) (*Resolution, error) {
	if u != nil && !t.hosts.allows(u.Hostname()) {
		return nil, fmt.Errorf("%w: %q", ErrHostNotAllowed, u.Hostname())
	}

	res := &Resolution{}
	if err := t.dispatcher.Parse(context.WithValue(ctx, resolutionKey{}, res), u); err != nil {
		return nil, err
	}

	return res, nil
}

// ResolveString parses raw and resolves it.
func (t *Table) ResolveString(ctx context.Context, raw string) (*Resolution, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &deeplink.MalformedURLError{URL: raw, Err: err}
	}
	return t.Resolve(ctx, u)
}

// Encode renders the template of the named route with vars.
func (t *Table) Encode(name string, vars deeplink.Vars) (string, error) {
	for _, e := range t.entries {
		if name != "" && e.route.Name == name {
			return e.template.Encode(vars)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
}

// Routes describes the compiled routes in dispatch order.
func (t *Table) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, RouteInfo{
			Name:        e.route.Name,
			Pattern:     e.template.Pattern(),
			Description: e.template.String(),
			Target:      e.route.Target,
		})
	}
	return out
}

// Dispatcher returns the underlying dispatcher.
func (t *Table) Dispatcher() *deeplink.Dispatcher {
	return t.dispatcher
}
