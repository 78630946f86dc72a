package middleware

import (
	"context"

	"github.com/finverse/accessgate/models"
)

// Context key type to avoid collisions
type contextKey string

// sessionKey is the context key for the evaluated session snapshot
const sessionKey contextKey = "session"

// WithSession adds a session snapshot to the context
func WithSession(ctx context.Context, sess models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext retrieves the session snapshot the guard evaluated.
// Returns an unauthenticated session when no guard ran.
func SessionFromContext(ctx context.Context) models.Session {
	if val := ctx.Value(sessionKey); val != nil {
		if sess, ok := val.(models.Session); ok {
			return sess
		}
	}
	return models.EmptySession(models.SessionUnauthenticated)
}
