package access

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/reqctx"
)

// GateOption configures a route gate.
type GateOption func(*gateOptions)

type gateOptions struct {
	operation string
	status    int
	all       bool
}

// WithOperation narrows a permission gate to one operation within its
// permission context.
func WithOperation(operation string) GateOption {
	return func(o *gateOptions) { o.operation = operation }
}

// WithStatus overrides the response status for denied requests. The default
// is 403; use 404 to hide the route's existence.
func WithStatus(status int) GateOption {
	return func(o *gateOptions) { o.status = status }
}

// WithAll makes a role gate require every listed role instead of any.
func WithAll() GateOption {
	return func(o *gateOptions) { o.all = true }
}

func applyGateOptions(opts []GateOption) gateOptions {
	o := gateOptions{status: http.StatusForbidden}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RequirePermission gates a route on a permission check. Requests that fail
// the check are aborted with the configured status and no body. A missing
// permission checker is a wiring mistake and fails the request hard.
func RequirePermission(permContext string, opts ...GateOption) gin.HandlerFunc {
	o := applyGateOptions(opts)
	return func(c *gin.Context) {
		state, ok := reqctx.Get(c)
		if !ok || state.Permissions == nil {
			abortUnwired(c, errors.MissingCapability("permission checker", "access"))
			return
		}

		allowed, err := state.Permissions.HasPermission(c.Request.Context(), permContext, o.operation)
		if err != nil {
			abortUnwired(c, err)
			return
		}
		if !allowed {
			_ = c.Error(denialError(state))
			c.AbortWithStatus(o.status)
			return
		}
		c.Next()
	}
}

// RequireRoles gates a route on the request's resolved roles. By default any
// listed role admits the request; WithAll requires all of them.
func RequireRoles(allowed []string, opts ...GateOption) gin.HandlerFunc {
	o := applyGateOptions(opts)
	return func(c *gin.Context) {
		state, ok := reqctx.Get(c)
		if !ok || state.Roles == nil {
			abortUnwired(c, errors.MissingCapability("role resolver", "roles"))
			return
		}

		admitted, err := state.Roles.HasRole(c.Request.Context(), allowed, o.all)
		if err != nil {
			abortUnwired(c, err)
			return
		}
		if !admitted {
			_ = c.Error(denialError(state))
			c.AbortWithStatus(o.status)
			return
		}
		c.Next()
	}
}

// denialError classifies a denial for the error log: an anonymous request was
// never authenticated, an authenticated one lacks the role or permission. The
// response status is the gate's either way.
func denialError(state *reqctx.State) *errors.AppError {
	if state.User == nil {
		return errors.Unauthorized("")
	}
	return errors.Forbidden("")
}

func abortUnwired(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
