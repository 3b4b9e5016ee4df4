package reqctx

// RoleKey is the user data key the built-in role provider reads.
const RoleKey = "role"

// User is a frozen snapshot of the authenticated user for one request.
// The data map is copied on construction and never exposed for mutation.
type User struct {
	id             string
	skippedLoading bool
	data           map[string]any
}

// NewUser builds a user snapshot from loaded data. The data map is copied so
// later mutations by the caller cannot leak into the request.
func NewUser(id string, data map[string]any, skippedLoading bool) *User {
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return &User{id: id, skippedLoading: skippedLoading, data: copied}
}

// ID returns the user's identifier.
func (u *User) ID() string { return u.id }

// SkippedLoading reports whether the snapshot was created without invoking
// the external loader (fresh-login fast path).
func (u *User) SkippedLoading() bool { return u.skippedLoading }

// Role returns the user's role field, or "" when none is set.
func (u *User) Role() string {
	role, _ := u.data[RoleKey].(string)
	return role
}

// Get returns an application data field from the snapshot.
func (u *User) Get(key string) (any, bool) {
	v, ok := u.data[key]
	return v, ok
}

// Data returns a copy of the application data.
func (u *User) Data() map[string]any {
	copied := make(map[string]any, len(u.data))
	for k, v := range u.data {
		copied[k] = v
	}
	return copied
}
