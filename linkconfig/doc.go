// Package linkconfig loads deep link routes from YAML and resolves URLs
// against them.
//
// Each route pairs a template with an optional target. Captured variables
// are bound into deeplink.Vars and rendered into the target:
//
//	hosts:
//	  - example.com
//	routes:
//	  - name: artist
//	    template: /artist/{slug}/{id}
//	    target: myapp://artist/{id}?slug={slug}
//	  - name: search
//	    template: /search/{terms:plus}
//	    target: myapp://search?q={terms:plus}
//
// Routes are tried in order. A route listing variables under require
// declines matches where any of them is empty, so a later route can claim
// the URL instead.
//
//	cfg, err := linkconfig.LoadFile("links.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table, err := cfg.Table()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := table.ResolveString(ctx, "https://example.com/artist/metallica/1")
package linkconfig
