// Package resolver serves a linkconfig route table over HTTP.
//
// Universal links land on the resolver as ordinary web requests. The
// resolver matches the request URL against the table and redirects to the
// rendered target, so the same configuration drives the app and the web
// fallback.
//
//	table, err := cfg.Table()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	handler := resolver.New(table, resolver.Config{Logger: logger})
//	err = resolver.ListenAndServe(ctx, ":8080", handler, resolver.ServeConfig{})
//
// GET /resolve?url=<link> returns the resolution as JSON without
// redirecting:
//
//	{"route":"artist","template":"/artist/{slug}/{id}","target":"myapp://artist/1?slug=metallica","vars":{"id":["1"],"slug":["metallica"]}}
package resolver
