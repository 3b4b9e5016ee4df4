// Package access gates route handlers on roles and fine-grained permissions.
//
// The Middleware installs a request-bound permission checker built from a
// single pluggable PermissionFunc, the seam where applications plug in an
// rbac evaluator (see RolePermission) or any custom decision logic.
//
// Gates run before the route handler and short-circuit denied requests with a
// configurable status and no body:
//
//	r.GET("/admin",
//	    access.RequirePermission("admin-panel", access.WithOperation("view")),
//	    adminHandler)
//
//	r.GET("/reports",
//	    access.RequireRoles([]string{"auditor", "admin"}, access.WithStatus(404)),
//	    reportsHandler)
package access

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/rbac"
	"github.com/kbukum/authkit/reqctx"
)

// PermissionFunc decides whether the current request may perform an operation
// within a permission context. It is invoked with the request's context so it
// can reach the request state (user, roles).
type PermissionFunc func(ctx context.Context, permContext, operation string) (bool, error)

// Checker binds a PermissionFunc to one request. It implements
// reqctx.PermissionChecker.
type Checker struct {
	fn PermissionFunc
}

// NewChecker wraps a PermissionFunc.
func NewChecker(fn PermissionFunc) *Checker {
	return &Checker{fn: fn}
}

// HasPermission implements reqctx.PermissionChecker.
func (c *Checker) HasPermission(ctx context.Context, permContext, operation string) (bool, error) {
	return c.fn(ctx, permContext, operation)
}

// Middleware installs the permission checker into the request state.
func Middleware(fn PermissionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := reqctx.Attach(c)
		state.Permissions = NewChecker(fn)
		c.Next()
	}
}

// RolePermission builds the role-based PermissionFunc: resolve the request's
// roles, then ask the evaluator whether any of them grants the permission.
func RolePermission(eval *rbac.Evaluator, log *logger.Logger) PermissionFunc {
	log = log.WithComponent("access")
	return func(ctx context.Context, permContext, operation string) (bool, error) {
		state, ok := reqctx.FromContext(ctx)
		if !ok || state.Roles == nil {
			return false, errors.MissingCapability("role resolver", "roles")
		}

		active, err := state.Roles.Roles(ctx)
		if err != nil {
			return false, err
		}

		roleList := make([]string, 0, len(active))
		for role := range active {
			roleList = append(roleList, role)
		}

		allowed := eval.AnyHasPermission(roleList, permContext, operation)
		log.Debug("checked permission", logger.Fields(
			logger.FieldContext, permContext,
			logger.FieldOperation, operation,
			logger.FieldRoles, roleList,
			logger.FieldStatus, allowed,
		))
		return allowed, nil
	}
}
