package rbac

import (
	"errors"
	"fmt"
)

// WildcardOperation grants every operation within a context.
// A Grant call with no operations stores this value.
const WildcardOperation = "*"

// WildcardContext is the fallback context bucket. A grant under this context
// answers for any context the role has no explicit entry for.
const WildcardContext = "*"

// ErrDuplicateGrant is returned (wrapped) by Build when the same
// (role, context) pair was granted more than once in a chain.
var ErrDuplicateGrant = errors.New("rbac: duplicate grant")

// Builder accumulates permission grants. The zero value is not usable;
// start a chain with New.
//
// Builders are immutable: Grant returns a new Builder that shares the
// already-accumulated grants with its parent. Any intermediate builder can be
// branched into independent tables.
type Builder struct {
	parent     *Builder
	role       string
	context    string
	operations []string
	err        error
}

// New returns an empty permission table builder.
func New() *Builder {
	return &Builder{}
}

// Grant adds operations for a role within a context and returns a new builder.
// With no operations the grant covers every operation in the context.
//
// Granting the same (role, context) pair twice in a chain is a caller error;
// it is detected here and reported by Build rather than merged.
func (b *Builder) Grant(role, context string, operations ...string) *Builder {
	next := &Builder{
		parent:     b,
		role:       role,
		context:    context,
		operations: operations,
		err:        b.err,
	}

	if next.err == nil && b.hasGrant(role, context) {
		next.err = fmt.Errorf("%w: role %q in context %q already granted", ErrDuplicateGrant, role, context)
	}
	if len(operations) == 0 {
		next.operations = []string{WildcardOperation}
	}

	return next
}

// hasGrant reports whether the chain up to and including b already holds a
// grant for (role, context).
func (b *Builder) hasGrant(role, context string) bool {
	for node := b; node != nil; node = node.parent {
		if node.role == role && node.context == context && node.parent != nil {
			return true
		}
	}
	return false
}

// Build freezes the chain into an Evaluator. It fails if any Grant in the
// chain duplicated a (role, context) pair.
func (b *Builder) Build() (*Evaluator, error) {
	if b.err != nil {
		return nil, b.err
	}

	table := make(map[string]map[string]map[string]struct{})
	for node := b; node != nil && node.parent != nil; node = node.parent {
		contexts, ok := table[node.role]
		if !ok {
			contexts = make(map[string]map[string]struct{})
			table[node.role] = contexts
		}
		ops := make(map[string]struct{}, len(node.operations))
		for _, op := range node.operations {
			ops[op] = struct{}{}
		}
		contexts[node.context] = ops
	}

	return &Evaluator{table: table}, nil
}

// MustBuild is like Build but panics on error. Intended for static tables
// assembled at startup.
func (b *Builder) MustBuild() *Evaluator {
	eval, err := b.Build()
	if err != nil {
		panic(err)
	}
	return eval
}
