package roles

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/reqctx"
)

// Middleware installs a fresh per-request Resolver into the request state.
// It must run after the user middleware so providers can see the loaded user.
func Middleware(registry *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := reqctx.Attach(c)
		state.Roles = NewResolver(registry)
		c.Next()
	}
}
