package issuer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDToken is a verified OIDC ID token.
type IDToken struct {
	Issuer    string
	Subject   string
	Nonce     string
	ExpiresAt time.Time
	IssuedAt  time.Time

	// Claims holds the full claim set for profile extraction.
	Claims map[string]interface{}
}

// verifier validates ID tokens against the issuer's JWKS: signature,
// algorithm allow-list, issuer, audience and expiry.
type verifier struct {
	parser *jwt.Parser
	keys   *keySet
}

func newVerifier(issuerURL, clientID string, algs []string, keys *keySet) *verifier {
	return &verifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods(algs),
			jwt.WithIssuer(issuerURL),
			jwt.WithAudience(clientID),
			jwt.WithExpirationRequired(),
		),
		keys: keys,
	}
}

func (v *verifier) verify(raw string) (*IDToken, error) {
	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, v.keys.Keyfunc); err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	token := &IDToken{Claims: claims}
	token.Issuer, _ = claims["iss"].(string)
	token.Subject, _ = claims["sub"].(string)
	token.Nonce, _ = claims["nonce"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		token.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		token.IssuedAt = iat.Time
	}

	if token.Subject == "" {
		return nil, fmt.Errorf("id token has no subject")
	}
	return token, nil
}
