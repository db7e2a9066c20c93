package auth

import "context"

type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session stored by the auth middleware or
// interceptor, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok && s.UserID != ""
}

// UserIDFromContext is a shorthand for SessionFromContext(ctx).UserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	s, ok := SessionFromContext(ctx)
	return s.UserID, ok
}
