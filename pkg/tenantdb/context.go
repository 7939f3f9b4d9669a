package tenantdb

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithDatabase returns a context bound to the named database. The parent
// context is untouched, so the binding is scoped to the derived context chain
// and disappears when that chain is abandoned.
func WithDatabase(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKey{}, name)
}

// DatabaseFromContext returns the database name bound by the nearest
// enclosing WithDatabase or RunWithDatabase. Returns "", false when the
// context carries no binding; callers that want the primary database as a
// fallback should go through Registry.Database.
func DatabaseFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(contextKey{}).(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// RunWithDatabase executes fn with the database name bound for the duration
// of the call tree rooted at fn. Nested calls establish independent inner
// bindings; the outer binding is restored for the caller by construction
// because the caller keeps its own context. Errors and panics from fn
// propagate unchanged.
func RunWithDatabase(ctx context.Context, name string, fn func(context.Context) error) error {
	return fn(WithDatabase(ctx, name))
}
