// Package roles aggregates the active role set for a request from pluggable
// providers.
//
// Providers are registered once at startup in a process-wide Registry. Each
// request gets its own Resolver which, on first use, invokes every provider
// concurrently, unions the results into one role set, and memoizes it for the
// remainder of the request:
//
//	reg := roles.NewRegistry()
//	reg.AddProvider(func(ctx context.Context) ([]string, error) {
//	    return []string{"beta-tester"}, nil
//	})
//
//	// per request (installed by roles.Middleware)
//	ok, err := resolver.HasRole(ctx, []string{"admin", "beta-tester"}, false)
//
// A failing provider aborts the whole resolution; there is no partial
// aggregation and no silent skip.
package roles
