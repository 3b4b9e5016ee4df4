package reqctx

import "github.com/gin-gonic/gin"

// Attach ensures the request carries a State, creating one if needed, and
// returns it. The kit's outermost middleware calls this once per request;
// later plugins retrieve the same State through Get.
func Attach(c *gin.Context) *State {
	if state, ok := FromContext(c.Request.Context()); ok {
		return state
	}
	state := &State{}
	c.Request = c.Request.WithContext(WithState(c.Request.Context(), state))
	return state
}

// Get retrieves the request state from a Gin context.
func Get(c *gin.Context) (*State, bool) {
	return FromContext(c.Request.Context())
}
