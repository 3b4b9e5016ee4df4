package authkit

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kbukum/authkit/access"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/issuer"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/rbac"
	"github.com/kbukum/authkit/reqctx"
	"github.com/kbukum/authkit/roles"
	"github.com/kbukum/authkit/session"
	"github.com/kbukum/authkit/user"
)

// Callbacks are the seams where the kit reaches into the application.
type Callbacks struct {
	// LoadUser looks up a user by id in the application's store. Returning
	// nil data (with no error) means the user no longer exists and clears
	// the session.
	LoadUser user.LoadFunc

	// AuthUser maps a completed sign-in to an existing user id. Return ""
	// (with no error) when no account is linked to the identity yet.
	AuthUser func(ctx context.Context, identity *issuer.Identity) (string, error)

	// CreateUser provisions an account for a first-time sign-in and returns
	// the new user id. When nil, unknown identities fail the sign-in.
	CreateUser func(ctx context.Context, identity *issuer.Identity) (string, error)

	// Permission overrides the role-based permission check. Leave nil to use
	// the evaluator given via WithEvaluator.
	Permission access.PermissionFunc

	// AuthPage renders the sign-in page mounted at the prefix. When nil a
	// minimal page linking each issuer is served.
	AuthPage gin.HandlerFunc
}

// Kit wires sessions, users, roles, permissions and issuers into one
// mountable unit.
type Kit struct {
	cfg        Config
	cb         Callbacks
	log        *logger.Logger
	store      session.Store
	users      *user.Manager
	registry   *roles.Registry
	issuers    map[string]*issuer.Client
	permission access.PermissionFunc
}

// Option configures a Kit.
type Option func(*kitOptions)

type kitOptions struct {
	log       *logger.Logger
	eval      *rbac.Evaluator
	store     session.Store
	issuerOpt map[string][]issuer.Option
}

// WithLogger replaces the logger built from Config.Logging.
func WithLogger(log *logger.Logger) Option {
	return func(o *kitOptions) { o.log = log }
}

// WithEvaluator installs a role permission table. Gates created with
// access.RequirePermission consult it through the request's resolved roles.
func WithEvaluator(eval *rbac.Evaluator) Option {
	return func(o *kitOptions) { o.eval = eval }
}

// WithSessionStore replaces the store built from Config.Session.
func WithSessionStore(store session.Store) Option {
	return func(o *kitOptions) { o.store = store }
}

// WithIssuerOptions passes extra options to the named issuer's client, such
// as a custom profile parser.
func WithIssuerOptions(name string, opts ...issuer.Option) Option {
	return func(o *kitOptions) {
		if o.issuerOpt == nil {
			o.issuerOpt = map[string][]issuer.Option{}
		}
		o.issuerOpt[name] = append(o.issuerOpt[name], opts...)
	}
}

// New builds a Kit from configuration and application callbacks. Issuer
// discovery runs here, so a misconfigured issuer fails construction.
func New(ctx context.Context, cfg Config, cb Callbacks, opts ...Option) (*Kit, error) {
	var o kitOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Setup("authkit", err.Error()).WithCause(err)
	}

	log := o.log
	if log == nil {
		log = logger.New(&cfg.Logging, "authkit")
	}

	kit := &Kit{
		cfg:      cfg,
		cb:       cb,
		log:      log,
		registry: roles.NewRegistry(),
		issuers:  map[string]*issuer.Client{},
	}

	kit.store = o.store
	if kit.store == nil {
		store, err := buildStore(cfg)
		if err != nil {
			return nil, err
		}
		kit.store = store
	}

	userOpts := []user.Option{user.WithLogger(log)}
	if cfg.GetUserIDFromHeader {
		userOpts = append(userOpts, user.WithHeaderOverride())
	}
	kit.users = user.NewManager(cb.LoadUser, userOpts...)

	kit.registry.AddProvider(user.RoleProvider)

	for name, icfg := range cfg.Issuers {
		client, err := issuer.New(ctx, name, icfg, cfg.callbackURL(name), log, o.issuerOpt[name]...)
		if err != nil {
			return nil, err
		}
		kit.issuers[name] = client
	}
	if len(kit.issuers) == 0 {
		log.Warn("no issuers configured, sign-in routes will not be mounted")
	} else if cb.AuthUser == nil {
		return nil, errors.Setup("authkit", "an AuthUser callback is required when issuers are configured")
	}

	kit.permission = cb.Permission
	if kit.permission == nil && o.eval != nil {
		kit.permission = access.RolePermission(o.eval, log)
	}

	return kit, nil
}

func buildStore(cfg Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		return session.NewRedisStore(client,
			session.WithRedisCookieName(cfg.Session.CookieName),
			session.WithRedisMaxAgeDays(cfg.SessionMaxAgeDays),
			session.WithRedisSecure(cfg.Session.Secure),
		), nil
	default:
		return session.NewCookieStore(cfg.SessionSecurityKey,
			session.WithCookieName(cfg.Session.CookieName),
			session.WithCookiePath(cfg.Session.CookiePath),
			session.WithMaxAgeDays(cfg.SessionMaxAgeDays),
			session.WithSecure(cfg.Session.Secure),
		)
	}
}

// Mount installs the kit's middleware chain on the router and registers the
// auth routes under the configured prefix.
func (k *Kit) Mount(r gin.IRouter) {
	r.Use(session.Middleware(k.store, k.log))
	r.Use(k.users.Middleware())
	r.Use(roles.Middleware(k.registry))
	if k.permission != nil {
		r.Use(access.Middleware(k.permission))
	}

	grp := r.Group(k.cfg.Prefix)
	grp.GET("", k.authPage)
	grp.GET("/logout", k.logout)

	for name, client := range k.issuers {
		grp.GET("/"+name, k.login(client))
		grp.GET("/"+name+"/callback", k.callback(client))
	}
}

// AddRoleProvider registers an extra role provider. The built-in provider
// contributing the loaded user's role field is always present.
func (k *Kit) AddRoleProvider(p roles.Provider) {
	k.registry.AddProvider(p)
}

// Users exposes the user manager for login and logout flows outside the
// issuer routes (e.g. password sign-in handlers).
func (k *Kit) Users() *user.Manager {
	return k.users
}

// CurrentUser returns the request's authenticated user, if any.
func (k *Kit) CurrentUser(c *gin.Context) (*reqctx.User, bool) {
	return k.users.CurrentUser(c)
}

// RequireAuthenticated redirects anonymous requests to the auth page.
func (k *Kit) RequireAuthenticated() gin.HandlerFunc {
	return k.users.RequireAuthenticated(k.cfg.Prefix)
}

func (k *Kit) authPage(c *gin.Context) {
	// An already-signed-in visitor has nothing to do here.
	if _, ok := k.users.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, k.cfg.RedirectOnSignIn)
		return
	}

	if k.cb.AuthPage != nil {
		k.cb.AuthPage(c)
		return
	}

	body := "<!doctype html><title>Sign in</title><h1>Sign in</h1><ul>"
	for name := range k.issuers {
		body += `<li><a href="` + k.cfg.Prefix + "/" + name + `">Sign in with ` + name + `</a></li>`
	}
	body += "</ul>"
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func (k *Kit) logout(c *gin.Context) {
	k.users.RemoveLoggedInUser(c)
	c.Redirect(http.StatusFound, k.cfg.RedirectOnSignOut)
}

func (k *Kit) login(client *issuer.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := client.Begin(c); err != nil {
			k.log.WithError(err).Error("failed to start sign-in",
				logger.Fields(logger.FieldIssuer, client.Name()))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}

// callback finishes a sign-in. Protocol-level rejections send the visitor
// back to the auth page with an error flag; anything else is a server fault.
// Per-issuer redirect overrides take precedence over the kit-wide targets.
func (k *Kit) callback(client *issuer.Client) gin.HandlerFunc {
	success := client.SuccessRedirect()
	if success == "" {
		success = k.cfg.RedirectOnSignIn
	}
	failure := client.FailureRedirect()
	if failure == "" {
		failure = k.cfg.failureRedirect()
	}

	return func(c *gin.Context) {
		identity, err := client.Complete(c)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeIdentityProtocol) {
				k.log.WithError(err).Warn("sign-in rejected",
					logger.Fields(logger.FieldIssuer, client.Name()))
				c.Redirect(http.StatusFound, failure)
				return
			}
			k.log.WithError(err).Error("sign-in failed",
				logger.Fields(logger.FieldIssuer, client.Name()))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		ctx := c.Request.Context()

		userID, err := k.cb.AuthUser(ctx, identity)
		if err != nil {
			k.log.WithError(err).Error("failed to auth user",
				logger.Fields(logger.FieldAuthID, identity.AuthID))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if userID == "" {
			if k.cb.CreateUser == nil {
				k.log.Warn("no account for identity and no create callback",
					logger.Fields(logger.FieldAuthID, identity.AuthID))
				c.Redirect(http.StatusFound, failure)
				return
			}
			userID, err = k.cb.CreateUser(ctx, identity)
			if err != nil {
				k.log.WithError(err).Error("failed to create user",
					logger.Fields(logger.FieldAuthID, identity.AuthID))
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		if err := k.users.SetLoggedInUser(c, userID, user.WithSkipLoading()); err != nil {
			k.log.WithError(err).Error("failed to establish session",
				logger.Fields(logger.FieldUserID, userID))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		k.log.Info("signed in",
			logger.Fields(logger.FieldUserID, userID, logger.FieldIssuer, client.Name()))
		c.Redirect(http.StatusFound, success)
	}
}
