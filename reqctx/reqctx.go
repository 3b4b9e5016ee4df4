// Package reqctx carries the per-request authentication state.
//
// Each request owns exactly one State. The plugins installed by the kit fill
// in the capabilities they provide: the session, the loaded user, the role
// resolver, the permission checker. A capability is nil until its plugin has
// run, and gates fail fast when they need one that was never installed.
//
// The State is stored under a single unexported context key:
//
//	state, ok := reqctx.FromContext(ctx)
//	user := state.User // nil while unauthenticated
package reqctx

import "context"

// Session is the narrow session contract the kit consumes: an opaque,
// tamper-resistant key-value store scoped to the requesting client.
type Session interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
	// Set stores a value under key.
	Set(key, value string) error
	// Delete removes key from the session.
	Delete(key string) error
}

// RoleResolver resolves the active role set for the current request.
// Implementations memoize per request.
type RoleResolver interface {
	Roles(ctx context.Context) (map[string]struct{}, error)
	HasRole(ctx context.Context, wanted []string, all bool) (bool, error)
}

// PermissionChecker answers fine-grained permission queries for the current
// request.
type PermissionChecker interface {
	HasPermission(ctx context.Context, permContext, operation string) (bool, error)
}

// State is the request-scoped authentication state. It is exclusively owned
// by the request it was created for and must never be shared across requests.
type State struct {
	// Session is the request's session store (nil until the session plugin ran).
	Session Session

	// User is the authenticated user, nil while unauthenticated.
	User *User

	// Roles resolves the request's role set (nil until the roles plugin ran).
	Roles RoleResolver

	// Permissions checks fine-grained permissions (nil until installed).
	Permissions PermissionChecker
}

type contextKey struct{}

var stateKey = contextKey{}

// WithState returns a context carrying the given state.
func WithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

// FromContext retrieves the request state from the context.
func FromContext(ctx context.Context) (*State, bool) {
	state, ok := ctx.Value(stateKey).(*State)
	return state, ok
}
