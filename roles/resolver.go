package roles

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Resolver resolves and memoizes the role set for one request. It is owned by
// that request and must not be shared; within a request it is only touched by
// the request's own task, so no locking is needed.
type Resolver struct {
	registry *Registry
	resolved bool
	roles    map[string]struct{}
}

// NewResolver creates a resolver bound to the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Roles returns the request's active role set. On first call every registered
// provider is invoked concurrently and the results are unioned; the set is
// then cached so later calls within the request never re-invoke providers.
// One failing provider fails the whole resolution and nothing is cached.
//
// Callers must treat the returned set as read-only.
func (r *Resolver) Roles(ctx context.Context) (map[string]struct{}, error) {
	if r.resolved {
		return r.roles, nil
	}

	providers := r.registry.Providers()
	results := make([][]string, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range providers {
		g.Go(func() error {
			contributed, err := provider(gctx)
			if err != nil {
				return err
			}
			results[i] = contributed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	union := make(map[string]struct{})
	for _, contributed := range results {
		for _, role := range contributed {
			union[role] = struct{}{}
		}
	}

	r.roles = union
	r.resolved = true
	return union, nil
}

// HasRole reports whether the request holds the wanted roles. With all=false
// one match suffices; with all=true every wanted role must be present.
func (r *Resolver) HasRole(ctx context.Context, wanted []string, all bool) (bool, error) {
	active, err := r.Roles(ctx)
	if err != nil {
		return false, err
	}

	if all {
		for _, role := range wanted {
			if _, ok := active[role]; !ok {
				return false, nil
			}
		}
		return true, nil
	}

	for _, role := range wanted {
		if _, ok := active[role]; ok {
			return true, nil
		}
	}
	return false, nil
}
