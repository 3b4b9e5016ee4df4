// Package user manages the authenticated user identity bound to a request.
//
// The Manager reads a user id from the session at request start, loads the
// user through an application-supplied loader, and caches a frozen snapshot
// for the remainder of the request. Login flows establish the session through
// SetLoggedInUser; logout clears it with RemoveLoggedInUser.
package user

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/reqctx"
)

// SessionKeyUserID is the session key carrying the logged-in user id.
const SessionKeyUserID = "authkit:user:user-id"

// TestUserIDHeader names the header consulted in header-override mode.
// Explicitly a test-only escape hatch.
const TestUserIDHeader = "X-Test-User-Id"

// Data is the application data returned by the user loader. A nil Data means
// "no such user" and invalidates the session.
type Data = map[string]any

// LoadFunc looks a user up in the application's external store.
type LoadFunc func(ctx context.Context, userID string) (Data, error)

// Manager owns the request-scoped user lifecycle.
type Manager struct {
	load           LoadFunc
	headerOverride bool
	log            *logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithHeaderOverride reads the user id from the X-Test-User-Id header instead
// of the session. Only for tests.
func WithHeaderOverride() Option {
	return func(m *Manager) { m.headerOverride = true }
}

// WithLogger sets the manager's logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a user manager around the given loader. A nil loader is
// allowed; users are then established from the session id alone.
func NewManager(load LoadFunc, opts ...Option) *Manager {
	m := &Manager{load: load, log: logger.NewDefault("authkit")}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithComponent("user")

	if m.headerOverride {
		m.log.Warn("user id header override is enabled, only use this in tests")
	}
	return m
}

// Middleware resolves the logged-in user at request start. The loaded
// snapshot is memoized in the request state; the loader runs at most once per
// request. Loader failures are unexpected errors and abort the request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := reqctx.Attach(c)

		var userID string
		if m.headerOverride {
			userID = c.GetHeader(TestUserIDHeader)
		} else if state.Session != nil {
			userID, _ = state.Session.Get(SessionKeyUserID)
		}

		if userID != "" {
			if err := m.establish(c.Request.Context(), state, userID, false); err != nil {
				m.log.WithError(err).Error("failed to load user")
				c.AbortWithStatus(500)
				return
			}
		}

		c.Next()
	}
}

// SetOption configures SetLoggedInUser.
type SetOption func(*setOptions)

type setOptions struct {
	skipLoading bool
}

// WithSkipLoading skips the external loader. Used right after a fresh login
// where the caller already knows the id is valid.
func WithSkipLoading() SetOption {
	return func(o *setOptions) { o.skipLoading = true }
}

// SetLoggedInUser writes the user id into the session and loads the user so
// it is available immediately after the call returns.
func (m *Manager) SetLoggedInUser(c *gin.Context, userID string, opts ...SetOption) error {
	if userID == "" {
		return errors.Validation("expected userId to be a non-empty string")
	}

	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	state, ok := reqctx.Get(c)
	if !ok || state.Session == nil {
		return errors.MissingCapability("session", "session")
	}

	if err := state.Session.Set(SessionKeyUserID, userID); err != nil {
		return err
	}
	return m.establish(c.Request.Context(), state, userID, o.skipLoading)
}

// RemoveLoggedInUser clears the session's user id and the request's user
// cache.
func (m *Manager) RemoveLoggedInUser(c *gin.Context) {
	state, ok := reqctx.Get(c)
	if !ok {
		return
	}
	if state.Session != nil {
		_ = state.Session.Delete(SessionKeyUserID)
	}
	state.User = nil
}

// CurrentUser returns the request's user snapshot, if authenticated.
func (m *Manager) CurrentUser(c *gin.Context) (*reqctx.User, bool) {
	state, ok := reqctx.Get(c)
	if !ok || state.User == nil {
		return nil, false
	}
	return state.User, true
}

// RequireAuthenticated installs a gate that redirects anonymous requests to
// the auth entry path before the route handler runs.
func (m *Manager) RequireAuthenticated(authPath string) gin.HandlerFunc {
	if authPath == "" {
		authPath = "/"
	}
	return func(c *gin.Context) {
		state, ok := reqctx.Get(c)
		if !ok || state.User == nil {
			c.Redirect(302, authPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// establish loads the user and freezes the snapshot into the request state.
// A loader returning nil data invalidates the session.
func (m *Manager) establish(ctx context.Context, state *reqctx.State, userID string, skipLoading bool) error {
	if m.load == nil || skipLoading {
		state.User = reqctx.NewUser(userID, nil, skipLoading)
		m.log.Debug("established user without loading", logger.Fields(logger.FieldUserID, userID))
		return nil
	}

	data, err := m.load(ctx, userID)
	if err != nil {
		return err
	}

	if data == nil {
		// The session pointed at a user that no longer exists.
		if state.Session != nil {
			_ = state.Session.Delete(SessionKeyUserID)
		}
		state.User = nil
		m.log.Info("did not load a user", logger.Fields(logger.FieldUserID, userID))
		return nil
	}

	state.User = reqctx.NewUser(userID, data, false)
	m.log.Info("loaded a user", logger.Fields(logger.FieldUserID, userID))
	return nil
}

// RoleProvider returns the built-in role provider deriving a role from the
// loaded user's role field.
func RoleProvider(ctx context.Context) ([]string, error) {
	state, ok := reqctx.FromContext(ctx)
	if !ok || state.User == nil {
		return nil, nil
	}
	if role := state.User.Role(); role != "" {
		return []string{role}, nil
	}
	return nil, nil
}
