// Package auth carries the authenticated identity through request contexts
// and issues and verifies the bearer tokens that establish it.
package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller of a request
type Identity struct {
	UserID   string
	Username string
}

// WithIdentity attaches id to ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by WithIdentity.
// ok is false when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
