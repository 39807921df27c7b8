package shared

import (
	"context"

	"github.com/scholaris/scholaris/internal/access"
)

type (
	sessionContextKey struct{}
	denialContextKey  struct{}
)

// ContextWithSession attaches the request's console session.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the console session, or nil outside the session
// middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithDenial records why the request was refused so the Access-Denied
// view can show the reason code.
func ContextWithDenial(ctx context.Context, reason access.Reason) context.Context {
	return context.WithValue(ctx, denialContextKey{}, reason)
}

// DenialFromContext returns the recorded reason, or "" when none was set.
func DenialFromContext(ctx context.Context) access.Reason {
	reason, _ := ctx.Value(denialContextKey{}).(access.Reason)
	return reason
}
