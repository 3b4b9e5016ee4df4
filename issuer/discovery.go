package issuer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// discoveryDoc is the subset of the OpenID Provider metadata the kit consumes.
type discoveryDoc struct {
	Issuer                string   `json:"issuer"`
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	UserInfoEndpoint      string   `json:"userinfo_endpoint"`
	JWKSUri               string   `json:"jwks_uri"`
	SupportedAlgs         []string `json:"id_token_signing_alg_values_supported"`
	CodeChallengeMethods  []string `json:"code_challenge_methods_supported"`
}

// discover fetches {issuer}/.well-known/openid-configuration.
func discover(ctx context.Context, client *http.Client, issuerURL string) (*discoveryDoc, error) {
	wellKnown := strings.TrimRight(issuerURL, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("discovery returned %d: %s", resp.StatusCode, string(body))
	}

	var doc discoveryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode discovery document: %w", err)
	}
	if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" {
		return nil, fmt.Errorf("discovery document missing authorization or token endpoint")
	}
	if doc.JWKSUri == "" {
		return nil, fmt.Errorf("discovery document missing jwks_uri")
	}
	return &doc, nil
}

// supportsChallengeMethod reports whether the issuer advertises the given
// PKCE method. An absent code_challenge_methods_supported list is treated as
// supporting S256, which is what the large providers implement.
func (d *discoveryDoc) supportsChallengeMethod(method string) bool {
	if len(d.CodeChallengeMethods) == 0 {
		return method == PKCES256
	}
	for _, m := range d.CodeChallengeMethods {
		if m == method {
			return true
		}
	}
	return false
}
