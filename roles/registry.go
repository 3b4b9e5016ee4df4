package roles

import (
	"context"
	"sync"
)

// Provider contributes zero or more roles for the current request. The
// context carries the request state, so a provider can inspect the loaded
// user, headers propagated by middleware, or anything else request-bound.
type Provider func(ctx context.Context) ([]string, error)

// Registry holds the process-wide set of role providers. Providers are
// registered during application assembly and the registry is read-only for
// the life of the process afterwards; reads from concurrent requests are safe.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddProvider registers a provider. Accidentally registering the same
// provider twice cannot duplicate roles, since resolution unions into a set.
func (r *Registry) AddProvider(p Provider) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// Providers returns a snapshot of the registered providers.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]Provider, len(r.providers))
	copy(snapshot, r.providers)
	return snapshot
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
