// Package context carries request-scoped identifiers used by logs and traces.
package context

import "context"

type requestIDKey struct{}
type actorKey struct{}

type actor struct {
	role string
	id   string
}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActor stores the resolved actor role and id on the context.
func WithActor(ctx context.Context, role, id string) context.Context {
	if role == "" && id == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor{role: role, id: id})
}

// ActorFromContext returns the actor role and id, empty when unset.
func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	if v, ok := ctx.Value(actorKey{}).(actor); ok {
		return v.role, v.id
	}
	return "", ""
}
