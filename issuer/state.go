package issuer

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
)

// generateState creates the random state value for CSRF protection.
// 32 bytes, hex-encoded.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateNonce creates the random nonce for ID token replay protection.
// 16 bytes, hex-encoded.
func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// pkcePair is a PKCE verifier/challenge pair for the negotiated method.
type pkcePair struct {
	Verifier  string
	Challenge string
	Method    string
}

// newPKCE generates a pair for the given method ("S256" or "plain"). The
// verifier is 32 random bytes, base64url-encoded.
func newPKCE(method string) (*pkcePair, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, err
	}
	verifier := base64.RawURLEncoding.EncodeToString(raw)

	pair := &pkcePair{Verifier: verifier, Method: method}
	switch method {
	case PKCEPlain:
		pair.Challenge = verifier
	default:
		sum := sha256.Sum256([]byte(verifier))
		pair.Challenge = base64.RawURLEncoding.EncodeToString(sum[:])
		pair.Method = PKCES256
	}
	return pair, nil
}
