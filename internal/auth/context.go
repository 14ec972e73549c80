package auth

import (
	"context"

	"fintrack/internal/core"
)

type contextKey struct{}

// WithSession returns a copy of ctx carrying the authenticated session.
func WithSession(ctx context.Context, s core.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFrom returns the session stored by WithSession.
func SessionFrom(ctx context.Context) (core.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(core.Session)
	return s, ok
}
