// Package contextkeys provides centralized context key definitions.
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/atriumhq/atrium/pkg/contextkeys"
//	ctx = contextkeys.WithTenant(ctx, tenant)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// TenantKey contains *tenancy.Tenant
	// Set by: tenancy.Middleware (pkg/tenancy/middleware.go)
	// Required by: rate limit middleware, auth middleware, all tenant-scoped handlers
	TenantKey Key = "tenant"

	// PrincipalKey contains *auth.Principal
	// Set by: middleware.AuthMiddleware (pkg/middleware/auth.go)
	// Required by: authorization checks, all protected handlers
	PrincipalKey Key = "principal"

	// RequestIDKey contains request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: logger, security events
	RequestIDKey Key = "request_id"
)

// WithTenant adds the resolved tenant to the context. The value is stored
// untyped to avoid an import cycle with pkg/tenancy; use tenancy.FromContext
// for type-safe retrieval.
func WithTenant(ctx context.Context, tenant interface{}) context.Context {
	return context.WithValue(ctx, TenantKey, tenant)
}

// WithPrincipal adds the authenticated principal to the context.
func WithPrincipal(ctx context.Context, principal interface{}) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
