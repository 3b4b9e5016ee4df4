// Package authkit is a pluggable authentication and authorization layer for
// gin applications: session management, user loading, role resolution,
// permission gates and OIDC/OAuth2 sign-in flows behind a handful of
// application callbacks.
//
//	perms := rbac.New().
//	    Grant("admin", "admin-panel").
//	    Grant("member", "billing", "view").
//	    MustBuild()
//
//	kit, err := authkit.New(ctx, cfg, authkit.Callbacks{
//	    LoadUser: store.LoadUser,
//	    AuthUser: store.FindByAuthID,
//	    CreateUser: store.CreateFromIdentity,
//	}, authkit.WithEvaluator(perms))
//	if err != nil {
//	    return err
//	}
//
//	r := gin.New()
//	kit.Mount(r)
//	r.GET("/admin", access.RequirePermission("admin-panel"), adminHandler)
//
// Sign-in routes mount under the configured prefix: GET {prefix}/{issuer}
// starts the flow, GET {prefix}/{issuer}/callback finishes it, and the
// resulting identity is handed to AuthUser/CreateUser as
// "<issuer>:<subject>".
package authkit
