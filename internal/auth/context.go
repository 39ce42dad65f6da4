package auth

import "context"

type ctxKey struct{}

// WithSession stores a resolved session on the request context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session placed by the access gate. Handlers on
// gated routes can rely on it being present.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}
