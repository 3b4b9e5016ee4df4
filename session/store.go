// Package session provides the session stores backing authkit's identity
// state.
//
// A Store opens one Session per request. Two backends are included:
//
//   - CookieStore: the whole session lives in an encrypted, authenticated
//     cookie (nacl/secretbox), no server-side state.
//   - RedisStore: the cookie carries only an opaque session id; values live
//     in a Redis hash with a sliding TTL.
//
// The kit only ever touches a handful of well-known keys (the logged-in user
// id plus transient login-flow state), but sessions are generic string
// key-value stores and applications may keep their own keys in them.
package session

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/reqctx"
	"github.com/kbukum/authkit/validation"
)

// Session is the per-request session contract. It matches reqctx.Session.
type Session = reqctx.Session

// Store opens the session bound to an incoming request.
type Store interface {
	Open(c *gin.Context) (Session, error)
}

// Config selects and configures the session backend.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Backend is "cookie" (default) or "redis".
	Backend string `mapstructure:"backend"`

	// CookieName is the session cookie name.
	CookieName string `mapstructure:"cookie_name"`

	// CookiePath is the cookie path (default "/").
	CookiePath string `mapstructure:"cookie_path"`

	// Secure marks the session cookie as HTTPS-only.
	Secure bool `mapstructure:"secure"`

	// Redis configures the redis backend (ignored for the cookie backend).
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = "cookie"
	}
	if c.CookieName == "" {
		c.CookieName = "authkit_session"
	}
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
}

// Validate checks the backend selection.
func (c *Config) Validate() error {
	v := validation.New()
	v.Required("session.backend", c.Backend).
		OneOf("session.backend", c.Backend, []string{"cookie", "redis"})
	if c.Backend == "redis" {
		v.Required("session.redis.addr", c.Redis.Addr)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Middleware opens the request's session and installs it into the request
// state. It is the first plugin in the kit's chain.
func Middleware(store Store, log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("session")
	return func(c *gin.Context) {
		state := reqctx.Attach(c)

		sess, err := store.Open(c)
		if err != nil {
			log.WithError(err).Error("failed to open session")
			c.AbortWithStatus(500)
			return
		}

		state.Session = sess
		c.Next()
	}
}

// maxAgeSeconds converts a day count into cookie max-age seconds.
func maxAgeSeconds(days int) int {
	return int((time.Duration(days) * 24 * time.Hour).Seconds())
}
