package portal

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/storekit/storekit/core"
)

// customerContextKey is a private type to prevent collisions with other context keys.
type customerContextKey struct{}

// WithCustomer stores the authenticated customer identity in the context.
// The platform's session layer calls this after verifying credentials; this
// package only consumes the result.
func WithCustomer(ctx context.Context, customerID uuid.UUID) context.Context {
	return context.WithValue(ctx, customerContextKey{}, customerID)
}

// CustomerFromContext retrieves the authenticated customer identity.
func CustomerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(customerContextKey{}).(uuid.UUID)
	return id, ok
}

// requireCustomer refuses requests that reached the portal without an
// authenticated customer identity.
func requireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CustomerFromContext(r.Context()); !ok {
			core.JSONError(w, core.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
