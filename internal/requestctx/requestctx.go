package requestctx

import "context"

type correlationIDContextKey struct{}

type identityRefContextKey struct{}

type sessionIDContextKey struct{}

// WithCorrelationID stores the correlation identifier of the current call in context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDContextKey{}, id)
}

// CorrelationIDFromContext returns the correlation identifier stored in context.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(correlationIDContextKey{}).(string)
	return value
}

// WithIdentityRef stores the authenticated identity reference in context.
func WithIdentityRef(ctx context.Context, ref string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityRefContextKey{}, ref)
}

// IdentityRefFromContext returns the authenticated identity reference stored in context.
func IdentityRefFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(identityRefContextKey{}).(string)
	return value
}

// WithSessionID stores the presented session id in context.
func WithSessionID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionIDContextKey{}, id)
}

// SessionIDFromContext returns the session id stored in context.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(sessionIDContextKey{}).(string)
	return value
}
