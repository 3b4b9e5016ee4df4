package rbac

// Evaluator answers permission queries against a frozen grant table.
// It is immutable and safe for concurrent use from any number of requests.
type Evaluator struct {
	table map[string]map[string]map[string]struct{}
}

// HasPermission reports whether the role may perform the operation within the
// context. An empty operation means the wildcard operation "*".
//
// A role's grant under the wildcard context "*" is consulted when the role has
// no entry for the queried context. Unknown roles and contexts are simply
// false, never an error.
func (e *Evaluator) HasPermission(role, context, operation string) bool {
	contexts, ok := e.table[role]
	if !ok {
		return false
	}

	ops, ok := contexts[context]
	if !ok {
		ops, ok = contexts[WildcardContext]
		if !ok {
			return false
		}
	}

	if operation == "" {
		operation = WildcardOperation
	}
	if _, ok := ops[WildcardOperation]; ok {
		return true
	}
	_, ok = ops[operation]
	return ok
}

// AnyHasPermission reports whether at least one of the roles grants the
// permission. It is a logical OR across roles, never an AND.
func (e *Evaluator) AnyHasPermission(roles []string, context, operation string) bool {
	for _, role := range roles {
		if e.HasPermission(role, context, operation) {
			return true
		}
	}
	return false
}

// Roles returns the role names the table holds grants for.
func (e *Evaluator) Roles() []string {
	roles := make([]string, 0, len(e.table))
	for role := range e.table {
		roles = append(roles, role)
	}
	return roles
}
