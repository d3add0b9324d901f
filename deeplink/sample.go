package deeplink

import (
	"context"
	"net/url"
)

// Sample describes a URL that a registered template is expected to claim.
type Sample[T any] struct {
	// Template identifies the registration by its canonical description.
	Template *Template[T]
	// URL is dispatched through every registration.
	URL *url.URL
	// Seed is the value captures are bound into.
	Seed T
	// Assert receives the bound value when the sample registration claims
	// the URL. Optional.
	Assert func(v T)
}

// VerifySample checks registration ordering: it dispatches s.URL through a
// copy of the registrations of d where the one matching s.Template runs
// s.Assert and claims. It returns nil when that registration claimed the
// URL and a *ShadowedError when an earlier registration claimed it first.
// d is not modified and no handler of d runs for the sample registration.
func VerifySample[T any](ctx context.Context, d *Dispatcher, s Sample[T]) error {
	i := d.indexOf(s.Template.String())
	if i < 0 {
		return &NoMatchError{URL: s.URL}
	}

	rel, err := RelativeReference(s.URL)
	if err != nil {
		return err
	}

	sample := s.Template.Handle(s.Seed, HandlerFunc[T](func(_ context.Context, _ *url.URL, v T) (bool, error) {
		if s.Assert != nil {
			s.Assert(v)
		}
		return true, nil
	}))
	sample.name = d.registrations[i].name
	sample.ephemeral = true

	regs := make([]*Registration, len(d.registrations))
	copy(regs, d.registrations)
	regs[i] = sample

	claimed, err := d.dispatch(ctx, s.URL, rel, regs)
	if err != nil {
		return err
	}
	if claimed != sample {
		return &ShadowedError{Template: sample.description, ClaimedBy: claimed.description}
	}

	return nil
}
