// Package deeplink implements a declarative URL template matcher and
// dispatcher for deep links and universal links.
//
// A template is literal text interleaved with placeholders. Matching a URL
// against a template binds the placeholder captures into a typed record.
// A Dispatcher holds an ordered list of registrations and hands each URL to
// the first registration whose template matches and whose handler claims
// the match. Handlers may decline, letting later registrations try.
//
// The package provides:
//   - Scalar and list placeholders bound to struct fields by reflection
//     or to any type implementing Record
//   - First-match dispatch with handler fallthrough
//   - Aggregated diagnostics when nothing matches
//   - Middleware and hooks around handler invocation
//   - Reverse building of URLs from records
//   - Ordering verification for registration tables
//
// # Templates
//
// Templates are written in placeholder syntax:
//
//	artist := deeplink.MustParse[Artist]("/artist/{slug}/{id}")
//	search := deeplink.MustParse[Search]("/search?query={query}")
//	list := deeplink.MustParse[Restaurants]("/restaurants/ids={ids:,}")
//
// A placeholder names a field path of the record type. Fields are resolved
// by their deeplink struct tag or, failing that, case-insensitively by
// name. Dotted paths reach into nested structs:
//
//	type EventType struct {
//	    ID    string
//	    Slug  string
//	    Event struct {
//	        ID   string
//	        Slug string
//	    }
//	}
//
//	deeplink.MustParse[EventType]("/event/{event.slug}/{slug}/{event.id}/{id}")
//
// A list placeholder carries a separator after the colon, either one
// character or a macro name: comma, semicolon, pipe, plus, colon, slash,
// amp, dot, dash, underscore, space, lbrace, rbrace.
//
// Two placeholders must be separated by literal text, and a field path may
// appear only once per template. Both are reported by Parse.
//
// The same templates can be built without parsing:
//
//	deeplink.Compile[Restaurants](deeplink.Lit("/restaurants/ids="), deeplink.ArgList("ids", ','))
//
// # Matching
//
// Only the relative reference of a URL takes part in matching: path,
// query and fragment, without scheme or authority. Literals are located
// at their first occurrence, in order, and the text between them becomes
// the captures. The first literal must start the relative reference. The
// last capture stops at the first reserved URL character, so trailing
// query or fragment syntax is ignored:
//
//	/sell/{id} matches https://example.com/sell/123?utm=x#top with id=123
//
// # Dispatching
//
//	d := deeplink.New(deeplink.WithLogger(logger))
//	deeplink.RegisterFunc(d, artist, Artist{}, openArtist)
//	deeplink.RegisterFunc(d, search, Search{}, openSearch)
//
//	if err := d.ParseString(ctx, link); err != nil {
//	    var nm *deeplink.NoMatchError
//	    if errors.As(err, &nm) {
//	        // nm.Errors holds one reason per registration
//	    }
//	}
//
// # Middleware
//
// Middleware wraps the invocation of matched handlers:
//
//	d.Use(func(next deeplink.Invoker) deeplink.Invoker {
//	    return func(ctx context.Context, m *deeplink.Match) (bool, error) {
//	        log.Println(m.Registration)
//	        return next(ctx, m)
//	    }
//	})
//
// The linkhandlers package provides ready-made middleware.
package deeplink
