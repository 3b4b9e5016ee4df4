package rbac

import (
	"errors"
	"testing"
)

func TestBuilderImmutability(t *testing.T) {
	base := New().Grant("editor", "posts", "read")

	// Branch the same base into two independent tables.
	withWrite, err := base.Grant("editor", "media", "write").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	withoutWrite, err := base.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !withWrite.HasPermission("editor", "media", "write") {
		t.Error("branched table should have the extra grant")
	}
	if withoutWrite.HasPermission("editor", "media", "write") {
		t.Error("base table must not see grants added on a branch")
	}
	if !withoutWrite.HasPermission("editor", "posts", "read") {
		t.Error("base table lost its own grant")
	}
}

func TestDuplicateGrantRejected(t *testing.T) {
	_, err := New().
		Grant("editor", "posts", "read").
		Grant("editor", "posts", "write").
		Build()

	if !errors.Is(err, ErrDuplicateGrant) {
		t.Fatalf("expected ErrDuplicateGrant, got %v", err)
	}
}

func TestDuplicateAllowedAcrossBranches(t *testing.T) {
	base := New().Grant("editor", "posts", "read")

	if _, err := base.Grant("editor", "media", "read").Build(); err != nil {
		t.Fatalf("branch one: %v", err)
	}
	// Same (role, context) as the other branch, but a separate chain.
	if _, err := base.Grant("editor", "media", "write").Build(); err != nil {
		t.Fatalf("branch two: %v", err)
	}
}

func TestWildcardOperation(t *testing.T) {
	eval := New().Grant("admin", "posts").MustBuild()

	for _, op := range []string{"read", "edit", "delete", "anything"} {
		if !eval.HasPermission("admin", "posts", op) {
			t.Errorf("wildcard grant should allow operation %q", op)
		}
	}
	if eval.HasPermission("admin", "media", "read") {
		t.Error("wildcard operation must not leak into other contexts")
	}
}

func TestWildcardContextFallback(t *testing.T) {
	eval := New().
		Grant("admin", "*").
		Grant("editor", "posts", "edit").
		Grant("editor", "*", "read").
		MustBuild()

	if !eval.HasPermission("admin", "anything", "delete") {
		t.Error("wildcard context should cover unmatched contexts")
	}
	if !eval.HasPermission("editor", "media", "read") {
		t.Error("fallback grant should answer for contexts with no entry")
	}
	// An explicit context entry shadows the fallback entirely.
	if eval.HasPermission("editor", "posts", "read") {
		t.Error("explicit context entry must shadow the wildcard fallback")
	}
}

func TestOrAcrossRoles(t *testing.T) {
	eval := New().Grant("editor", "posts", "edit").MustBuild()

	if !eval.AnyHasPermission([]string{"viewer", "editor"}, "posts", "edit") {
		t.Error("any matching role should grant the permission")
	}
	if eval.AnyHasPermission([]string{"viewer"}, "posts", "edit") {
		t.Error("viewer alone must not be granted")
	}
	if eval.AnyHasPermission(nil, "posts", "edit") {
		t.Error("empty role set must never be granted")
	}
}

func TestEmptyOperationMeansWildcard(t *testing.T) {
	eval := New().
		Grant("admin", "posts").
		Grant("viewer", "posts", "read").
		MustBuild()

	if !eval.HasPermission("admin", "posts", "") {
		t.Error("empty operation should match a wildcard grant")
	}
	if eval.HasPermission("viewer", "posts", "") {
		t.Error("empty operation must not match a specific grant")
	}
}

func TestUnknownRoleAndContext(t *testing.T) {
	eval := New().Grant("editor", "posts", "read").MustBuild()

	cases := []struct {
		name               string
		role, context, op  string
	}{
		{"unknown role", "nobody", "posts", "read"},
		{"unknown context", "editor", "media", "read"},
		{"unknown operation", "editor", "posts", "delete"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if eval.HasPermission(tc.role, tc.context, tc.op) {
				t.Error("expected false, got true")
			}
		})
	}
}

func TestDuplicateErrorSurfacesOnLaterBuilds(t *testing.T) {
	b := New().
		Grant("editor", "posts", "read").
		Grant("editor", "posts", "write"). // duplicate
		Grant("viewer", "posts", "read")

	if _, err := b.Build(); !errors.Is(err, ErrDuplicateGrant) {
		t.Fatalf("error must stick to the chain, got %v", err)
	}
}
