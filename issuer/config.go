package issuer

import (
	"fmt"
	"time"

	"github.com/kbukum/authkit/validation"
)

// Issuer types.
const (
	TypeOIDC   = "oidc"
	TypeOAuth2 = "oauth2"
)

// PKCE modes.
const (
	PKCEAuto  = "auto"
	PKCES256  = "S256"
	PKCEPlain = "plain"
	PKCEOff   = "off"
)

// Config configures one identity issuer.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Type selects the flow: "oidc" (discovery + ID token) or "oauth2"
	// (explicit endpoints + profile fetch). Default: "oidc".
	Type string `mapstructure:"type" validate:"omitempty,oneof=oidc oauth2"`

	// Issuer is the OIDC issuer URL (e.g., "https://accounts.google.com").
	// Required for type "oidc"; discovery runs against
	// {issuer}/.well-known/openid-configuration.
	Issuer string `mapstructure:"issuer"`

	// AuthURL and TokenURL are the explicit OAuth2 endpoints for type
	// "oauth2", where no discovery document exists.
	AuthURL  string `mapstructure:"auth_url"`
	TokenURL string `mapstructure:"token_url"`

	// UserProfileURL is fetched with the access token after the exchange for
	// type "oauth2" (e.g., "https://api.github.com/user").
	UserProfileURL string `mapstructure:"user_profile_url"`

	// ClientID is the OAuth2 client ID (also the expected "aud" claim).
	ClientID string `mapstructure:"client_id"`

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `mapstructure:"client_secret"`

	// Scopes are the OAuth2 scopes to request.
	// Default for type "oidc": ["openid", "email", "profile"].
	Scopes []string `mapstructure:"scopes"`

	// UsePKCE selects the PKCE mode: "auto", "S256", "plain" or "off".
	// "auto" prefers S256 and falls back to plain only when the issuer
	// advertises nothing else. Default: "auto".
	UsePKCE string `mapstructure:"use_pkce" validate:"omitempty,oneof=auto S256 plain off"`

	// SuccessRedirect overrides where sign-ins through this issuer land.
	// Empty means the kit-wide sign-in redirect.
	SuccessRedirect string `mapstructure:"success_redirect"`

	// FailureRedirect overrides where failed sign-ins through this issuer
	// land. Empty means the kit-wide failure target.
	FailureRedirect string `mapstructure:"failure_redirect"`

	// SupportedSigningAlgs restricts allowed ID token signing algorithms
	// (default: ["RS256"]).
	SupportedSigningAlgs []string `mapstructure:"supported_signing_algs"`

	// JWKSCacheDuration controls how long JWKS keys are cached (default: "1h").
	JWKSCacheDuration time.Duration `mapstructure:"jwks_cache_duration"`

	// HTTPTimeout bounds discovery, JWKS and profile requests (default: "10s").
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeOIDC
	}
	if c.UsePKCE == "" {
		c.UsePKCE = PKCEAuto
	}
	if len(c.Scopes) == 0 && c.Type == TypeOIDC {
		c.Scopes = []string{"openid", "email", "profile"}
	}
	if len(c.SupportedSigningAlgs) == 0 {
		c.SupportedSigningAlgs = []string{"RS256"}
	}
	if c.JWKSCacheDuration == 0 {
		c.JWKSCacheDuration = time.Hour
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 10 * time.Second
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	v := validation.New()

	switch c.Type {
	case TypeOIDC:
		v.Required("issuer", c.Issuer)
	case TypeOAuth2:
		v.Required("auth_url", c.AuthURL).
			Required("token_url", c.TokenURL).
			Required("user_profile_url", c.UserProfileURL)
	default:
		v.AddError("type", fmt.Sprintf("unknown issuer type %q", c.Type))
	}

	v.Required("client_id", c.ClientID)
	v.OneOf("use_pkce", c.UsePKCE, []string{PKCEAuto, PKCES256, PKCEPlain, PKCEOff})

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
