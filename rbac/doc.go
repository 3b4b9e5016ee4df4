// Package rbac provides a role × context × operation permission table.
//
// Grants are accumulated through an immutable builder chain and frozen into
// an Evaluator that is safe for unlimited concurrent reads:
//
//	eval, err := rbac.New().
//	    Grant("admin", "*").                      // every operation in every context
//	    Grant("editor", "posts", "read", "edit"). // specific operations
//	    Grant("viewer", "posts", "read").
//	    Build()
//
//	eval.HasPermission("editor", "posts", "edit")              // true
//	eval.AnyHasPermission([]string{"viewer", "editor"}, "posts", "edit") // true
//
// Each Grant returns a new builder value; earlier builders stay valid and can
// be branched into independent tables. Granting the same (role, context) pair
// twice in one chain is a caller error reported by Build.
//
// This package has zero external dependencies (standard library only),
// so it can be used in any project without pulling in authentication
// or HTTP libraries.
package rbac
