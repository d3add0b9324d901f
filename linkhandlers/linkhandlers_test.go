package linkhandlers

import (
	"context"
	"net/url"

	"github.com/vitalvas/deeplink/deeplink"
)

type page struct {
	ID string
}

var pageTemplate = deeplink.MustParse[page]("/page/{id}")

// newDispatcher returns a dispatcher with a single /page/{id} registration
// served by fn and wrapped with mw.
func newDispatcher(fn func(ctx context.Context, u *url.URL, p page) (bool, error), mw ...deeplink.MiddlewareFunc) *deeplink.Dispatcher {
	d := deeplink.New(deeplink.WithMiddleware(mw...))
	deeplink.RegisterFunc(d, pageTemplate, page{}, fn)
	return d
}

func claimAll(context.Context, *url.URL, page) (bool, error) {
	return true, nil
}
