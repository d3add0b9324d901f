package deeplink

// Builder collects registrations declaratively, with conditional and
// repeated entries, and builds a Dispatcher from them.
//
//	d := deeplink.NewBuilder().
//	    Add(home.HandleFunc(openHome)).
//	    AddIf(cfg.Beta, beta.HandleFunc(openBeta)).
//	    Build()
type Builder struct {
	registrations []*Registration
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends registrations in order.
func (b *Builder) Add(regs ...*Registration) *Builder {
	b.registrations = append(b.registrations, regs...)
	return b
}

// AddIf appends registrations only when cond is true.
func (b *Builder) AddIf(cond bool, regs ...*Registration) *Builder {
	if cond {
		b.Add(regs...)
	}
	return b
}

// AddEither appends then when cond is true and otherwise.
func (b *Builder) AddEither(cond bool, then, otherwise *Registration) *Builder {
	if cond {
		return b.Add(then)
	}
	return b.Add(otherwise)
}

// AddEach appends the registration fn returns for every item. Nil results
// are skipped.
func AddEach[E any](b *Builder, items []E, fn func(E) *Registration) *Builder {
	for _, item := range items {
		if reg := fn(item); reg != nil {
			b.Add(reg)
		}
	}
	return b
}

// Registrations returns a copy of the collected registrations.
func (b *Builder) Registrations() []*Registration {
	return append([]*Registration(nil), b.registrations...)
}

// Build returns a dispatcher holding the collected registrations followed
// by any added through opts.
func (b *Builder) Build(opts ...Option) *Dispatcher {
	return New(append([]Option{WithRegistrations(b.Registrations()...)}, opts...)...)
}
