package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/rbac"
	"github.com/kbukum/authkit/reqctx"
	"github.com/kbukum/authkit/roles"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func staticRoles(assigned ...string) roles.Provider {
	return func(ctx context.Context) ([]string, error) {
		return assigned, nil
	}
}

// newRouter wires the role and permission middleware the way the kit mounts
// them, with a fixed role set and a handler that records whether it ran.
func newRouter(t *testing.T, eval *rbac.Evaluator, assigned []string, gate gin.HandlerFunc, ran *atomic.Bool) *gin.Engine {
	t.Helper()
	registry := roles.NewRegistry()
	registry.AddProvider(staticRoles(assigned...))

	r := gin.New()
	r.Use(roles.Middleware(registry))
	r.Use(Middleware(RolePermission(eval, logger.Nop())))
	r.GET("/guarded", gate, func(c *gin.Context) {
		ran.Store(true)
		c.String(http.StatusOK, "ok")
	})
	return r
}

func serve(r *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/guarded", http.NoBody))
	return rec
}

func TestRequirePermissionAllows(t *testing.T) {
	eval := rbac.New().Grant("admin", "admin-panel", "view").MustBuild()

	var ran atomic.Bool
	r := newRouter(t, eval, []string{"admin"}, RequirePermission("admin-panel", WithOperation("view")), &ran)

	rec := serve(r)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ran.Load() {
		t.Fatal("handler did not run for an allowed request")
	}
}

func TestRequirePermissionDeniesWithoutBody(t *testing.T) {
	eval := rbac.New().Grant("admin", "admin-panel", "view").MustBuild()

	var ran atomic.Bool
	r := newRouter(t, eval, []string{"member"}, RequirePermission("admin-panel", WithOperation("view")), &ran)

	rec := serve(r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("denied response leaked a body: %q", rec.Body.String())
	}
	if ran.Load() {
		t.Fatal("handler ran for a denied request")
	}
}

func TestRequirePermissionCustomStatus(t *testing.T) {
	eval := rbac.New().Grant("admin", "admin-panel").MustBuild()

	var ran atomic.Bool
	r := newRouter(t, eval, nil, RequirePermission("admin-panel", WithStatus(http.StatusNotFound)), &ran)

	if rec := serve(r); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRequirePermissionWithoutCheckerFailsHard(t *testing.T) {
	var ran atomic.Bool
	r := gin.New()
	r.GET("/guarded", RequirePermission("admin-panel"), func(c *gin.Context) {
		ran.Store(true)
	})

	rec := serve(r)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ran.Load() {
		t.Fatal("handler ran without a permission checker installed")
	}
}

func TestRequireRoles(t *testing.T) {
	eval := rbac.New().MustBuild()

	cases := []struct {
		name     string
		assigned []string
		gate     gin.HandlerFunc
		want     int
	}{
		{"any match", []string{"auditor"}, RequireRoles([]string{"auditor", "admin"}), http.StatusOK},
		{"no match", []string{"member"}, RequireRoles([]string{"auditor", "admin"}), http.StatusForbidden},
		{"all present", []string{"auditor", "admin"}, RequireRoles([]string{"auditor", "admin"}, WithAll()), http.StatusOK},
		{"all missing one", []string{"auditor"}, RequireRoles([]string{"auditor", "admin"}, WithAll()), http.StatusForbidden},
		{"hidden route", []string{"member"}, RequireRoles([]string{"admin"}, WithStatus(http.StatusNotFound)), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ran atomic.Bool
			r := newRouter(t, eval, tc.assigned, tc.gate, &ran)
			rec := serve(r)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if ran.Load() != (tc.want == http.StatusOK) {
				t.Errorf("handler ran = %v with status %d", ran.Load(), rec.Code)
			}
		})
	}
}

func TestRolePermissionResolvesRolesOnce(t *testing.T) {
	eval := rbac.New().
		Grant("admin", "admin-panel").
		Grant("admin", "billing", "view").
		MustBuild()

	var calls atomic.Int32
	registry := roles.NewRegistry()
	registry.AddProvider(func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"admin"}, nil
	})

	r := gin.New()
	r.Use(roles.Middleware(registry))
	r.Use(Middleware(RolePermission(eval, logger.Nop())))
	r.GET("/guarded",
		RequirePermission("admin-panel"),
		RequirePermission("billing", WithOperation("view")),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if calls.Load() != 1 {
		t.Fatalf("role provider called %d times, want 1", calls.Load())
	}
}

func TestRolePermissionWithoutResolver(t *testing.T) {
	eval := rbac.New().MustBuild()
	fn := RolePermission(eval, logger.Nop())

	state := &reqctx.State{}
	ctx := reqctx.WithState(context.Background(), state)
	if _, err := fn(ctx, "admin-panel", ""); err == nil {
		t.Fatal("expected an error without a role resolver installed")
	}
}

// TestDenialErrorClass checks the error attached for the logging middleware:
// denials of anonymous requests are unauthorized, denials of authenticated
// ones forbidden. The response status is the gate's in both cases.
func TestDenialErrorClass(t *testing.T) {
	eval := rbac.New().Grant("admin", "admin-panel").MustBuild()

	cases := []struct {
		name     string
		signedIn bool
		wantCode errors.ErrorCode
	}{
		{"anonymous", false, errors.ErrCodeUnauthorized},
		{"authenticated", true, errors.ErrCodeForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var attached error

			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Next()
				if last := c.Errors.Last(); last != nil {
					attached = last.Err
				}
			})
			r.Use(roles.Middleware(roles.NewRegistry()))
			r.Use(Middleware(RolePermission(eval, logger.Nop())))
			if tc.signedIn {
				r.Use(func(c *gin.Context) {
					state, _ := reqctx.Get(c)
					state.User = reqctx.NewUser("u1", nil, false)
					c.Next()
				})
			}
			r.GET("/guarded", RequirePermission("admin-panel"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			rec := serve(r)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", rec.Code)
			}
			if !errors.IsCode(attached, tc.wantCode) {
				t.Errorf("attached error = %v, want code %s", attached, tc.wantCode)
			}
		})
	}
}
