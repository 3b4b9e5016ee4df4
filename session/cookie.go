package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/kbukum/authkit/errors"
)

const nonceSize = 24

// CookieStore keeps the whole session in a single encrypted, authenticated
// cookie. Tampered or undecryptable cookies start a fresh empty session
// rather than failing the request.
type CookieStore struct {
	key      [32]byte
	name     string
	path     string
	maxAge   int
	secure   bool
	httpOnly bool
}

// CookieOption configures a CookieStore.
type CookieOption func(*CookieStore)

// WithCookieName overrides the cookie name.
func WithCookieName(name string) CookieOption {
	return func(s *CookieStore) { s.name = name }
}

// WithCookiePath overrides the cookie path.
func WithCookiePath(path string) CookieOption {
	return func(s *CookieStore) { s.path = path }
}

// WithMaxAgeDays sets the cookie lifetime in days.
func WithMaxAgeDays(days int) CookieOption {
	return func(s *CookieStore) { s.maxAge = maxAgeSeconds(days) }
}

// WithSecure marks the cookie as HTTPS-only.
func WithSecure(secure bool) CookieOption {
	return func(s *CookieStore) { s.secure = secure }
}

// NewCookieStore creates a cookie-backed session store. The security key must
// be 64 hexadecimal characters (a 32-byte secretbox key); anything else is a
// setup error.
func NewCookieStore(securityKeyHex string, opts ...CookieOption) (*CookieStore, error) {
	raw, err := hex.DecodeString(securityKeyHex)
	if err != nil || len(raw) != 32 {
		return nil, errors.Setup("session", "security key must be 64 hexadecimal characters")
	}

	store := &CookieStore{
		name:     "authkit_session",
		path:     "/",
		maxAge:   maxAgeSeconds(30),
		httpOnly: true,
	}
	copy(store.key[:], raw)

	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Open implements Store. A missing, corrupt, or tampered cookie yields an
// empty session.
func (s *CookieStore) Open(c *gin.Context) (Session, error) {
	sess := &cookieSession{store: s, c: c, values: map[string]string{}}

	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return sess, nil
	}

	if values, ok := s.decrypt(raw); ok {
		sess.values = values
	}
	return sess, nil
}

func (s *CookieStore) decrypt(raw string) (map[string]string, bool) {
	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(sealed) <= nonceSize {
		return nil, false
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, false
	}

	var values map[string]string
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, false
	}
	return values, true
}

func (s *CookieStore) encrypt(values map[string]string) (string, error) {
	plain, err := json.Marshal(values)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// cookieSession is the per-request view of a cookie session. Every mutation
// rewrites the response cookie so the final state always wins.
type cookieSession struct {
	store  *CookieStore
	c      *gin.Context
	values map[string]string
}

func (s *cookieSession) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *cookieSession) Set(key, value string) error {
	s.values[key] = value
	return s.write()
}

func (s *cookieSession) Delete(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.write()
}

func (s *cookieSession) write() error {
	encoded, err := s.store.encrypt(s.values)
	if err != nil {
		return errors.New(errors.ErrCodeSessionStore, "failed to seal session cookie", 500).WithCause(err)
	}

	replaceCookie(s.c, &http.Cookie{
		Name:     s.store.name,
		Value:    encoded,
		Path:     s.store.path,
		MaxAge:   s.store.maxAge,
		Secure:   s.store.secure,
		HttpOnly: s.store.httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// replaceCookie sets a cookie, dropping any Set-Cookie header a previous
// mutation in the same request wrote for the same name.
func replaceCookie(c *gin.Context, cookie *http.Cookie) {
	header := c.Writer.Header()
	existing := header["Set-Cookie"]

	kept := existing[:0]
	prefix := cookie.Name + "="
	for _, line := range existing {
		if !strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
		}
	}

	header["Set-Cookie"] = append(kept, cookie.String())
}
