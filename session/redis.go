package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kbukum/authkit/errors"
)

// RedisStore keeps session values server-side in a Redis hash; the cookie
// carries only an opaque session id. Every write refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	name   string
	path   string
	maxAge int
	ttl    time.Duration
	secure bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisCookieName overrides the session-id cookie name.
func WithRedisCookieName(name string) RedisOption {
	return func(s *RedisStore) { s.name = name }
}

// WithRedisMaxAgeDays sets both the cookie lifetime and the Redis TTL.
func WithRedisMaxAgeDays(days int) RedisOption {
	return func(s *RedisStore) {
		s.maxAge = maxAgeSeconds(days)
		s.ttl = time.Duration(days) * 24 * time.Hour
	}
}

// WithRedisSecure marks the session-id cookie as HTTPS-only.
func WithRedisSecure(secure bool) RedisOption {
	return func(s *RedisStore) { s.secure = secure }
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		name:   "authkit_sid",
		path:   "/",
		maxAge: maxAgeSeconds(30),
		ttl:    30 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Open implements Store. A request without a session cookie gets a session id
// lazily, on its first write.
func (s *RedisStore) Open(c *gin.Context) (Session, error) {
	sid, _ := c.Cookie(s.name)
	return &redisSession{store: s, c: c, sid: sid}, nil
}

func (s *RedisStore) hashKey(sid string) string {
	return "authkit:session:" + sid
}

type redisSession struct {
	store *RedisStore
	c     *gin.Context
	sid   string
}

func (s *redisSession) Get(key string) (string, bool) {
	if s.sid == "" {
		return "", false
	}

	ctx := s.c.Request.Context()
	value, err := s.store.client.HGet(ctx, s.store.hashKey(s.sid), key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *redisSession) Set(key, value string) error {
	s.ensureID()

	ctx := s.c.Request.Context()
	hashKey := s.store.hashKey(s.sid)
	if err := s.store.client.HSet(ctx, hashKey, key, value).Err(); err != nil {
		return errors.New(errors.ErrCodeSessionStore, "failed to write session value", 500).WithCause(err)
	}
	if err := s.store.client.Expire(ctx, hashKey, s.store.ttl).Err(); err != nil {
		return errors.New(errors.ErrCodeSessionStore, "failed to refresh session TTL", 500).WithCause(err)
	}
	return nil
}

func (s *redisSession) Delete(key string) error {
	if s.sid == "" {
		return nil
	}

	ctx := s.c.Request.Context()
	if err := s.store.client.HDel(ctx, s.store.hashKey(s.sid), key).Err(); err != nil {
		return errors.New(errors.ErrCodeSessionStore, "failed to delete session value", 500).WithCause(err)
	}
	return nil
}

// ensureID assigns a session id and cookie on first write.
func (s *redisSession) ensureID() {
	if s.sid != "" {
		return
	}
	s.sid = uuid.New().String()

	replaceCookie(s.c, &http.Cookie{
		Name:     s.store.name,
		Value:    s.sid,
		Path:     s.store.path,
		MaxAge:   s.store.maxAge,
		Secure:   s.store.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
