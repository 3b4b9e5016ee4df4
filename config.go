package authkit

import (
	"fmt"
	"strings"

	"github.com/kbukum/authkit/issuer"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/session"
	"github.com/kbukum/authkit/validation"
)

// Config configures the kit.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// SessionSecurityKey encrypts cookie sessions: 64 hex characters
	// (32 random bytes). Generate one with `openssl rand -hex 32`.
	SessionSecurityKey string `mapstructure:"session_security_key" validate:"required,securitykey"`

	// BaseURL is the externally visible origin of the application,
	// e.g. "https://app.example.com". Issuer callback URLs derive from it.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Prefix is the path all auth routes mount under (default "/auth").
	Prefix string `mapstructure:"prefix"`

	// RedirectOnSignIn is where successful sign-ins land (default "/").
	RedirectOnSignIn string `mapstructure:"redirect_on_sign_in"`

	// RedirectOnSignOut is where sign-outs land (default "/").
	RedirectOnSignOut string `mapstructure:"redirect_on_sign_out"`

	// SessionMaxAgeDays is the session lifetime in days (default 30).
	SessionMaxAgeDays int `mapstructure:"session_max_age_days"`

	// GetUserIDFromHeader reads the user id from the X-Test-User-Id header
	// instead of the session. Only for tests.
	GetUserIDFromHeader bool `mapstructure:"get_user_id_from_header"`

	// Session selects and configures the session backend.
	Session session.Config `mapstructure:"session"`

	// Issuers maps issuer names ("google", "github", ...) to their
	// configuration. The name becomes part of the sign-in routes and of the
	// AuthID handed to the application.
	Issuers map[string]issuer.Config `mapstructure:"issuers"`

	// Logging configures the kit's structured logging.
	Logging logger.Config `mapstructure:"logging"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Prefix == "" {
		c.Prefix = "/auth"
	}
	if c.RedirectOnSignIn == "" {
		c.RedirectOnSignIn = "/"
	}
	if c.RedirectOnSignOut == "" {
		c.RedirectOnSignOut = "/"
	}
	if c.SessionMaxAgeDays == 0 {
		c.SessionMaxAgeDays = 30
	}
	c.Session.ApplyDefaults()
	c.Logging.ApplyDefaults()

	for name, icfg := range c.Issuers {
		icfg.ApplyDefaults()
		c.Issuers[name] = icfg
	}

	// HTTPS deployments get secure cookies without extra configuration.
	if strings.HasPrefix(c.BaseURL, "https://") {
		c.Session.Secure = true
	}
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Prefix, "/") {
		return fmt.Errorf("prefix must start with / (got: %s)", c.Prefix)
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	for name, icfg := range c.Issuers {
		if err := icfg.Validate(); err != nil {
			return fmt.Errorf("issuer %s: %w", name, err)
		}
	}
	return nil
}

// callbackURL builds the redirect URL registered with the named issuer.
func (c *Config) callbackURL(name string) string {
	return strings.TrimRight(c.BaseURL, "/") + c.Prefix + "/" + name + "/callback"
}

// failureRedirect is where failed sign-ins land: the auth page, flagged.
func (c *Config) failureRedirect() string {
	return c.Prefix + "?error=true"
}
