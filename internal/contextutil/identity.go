package contextutil

import (
	"context"

	"mga-chatbot/internal/domain"
)

const (
	identityKey contextKey = "identity"
	sessionKey  contextKey = "session"
)

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by the auth middleware.
// The second return value is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	if !ok || id.Username == "" || id.Team == "" {
		return domain.Identity{}, false
	}
	return id, true
}

// WithSessionToken returns a copy of ctx carrying the session token.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionKey, token)
}

// SessionTokenFromContext returns the session token, or "" if none is set.
func SessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionKey).(string)
	return token
}
