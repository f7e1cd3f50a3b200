package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/contextkeys"
	"github.com/atriumhq/atrium/pkg/httputil"
	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// AuthMiddleware verifies the bearer token and binds it to the resolved
// tenant, placing a Principal in the request context. It requires the
// tenant resolution middleware to have run first.
type AuthMiddleware struct {
	tokens *auth.TokenService
	binder *auth.Binder
	logger *observability.Logger
}

// NewAuthMiddleware creates the authentication middleware.
func NewAuthMiddleware(tokens *auth.TokenService, binder *auth.Binder, logger *observability.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, binder: binder, logger: logger}
}

// Handler requires a valid, tenant-bound token. Requests without one are
// rejected before the wrapped handler runs.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := tenancy.FromContext(r)
		if tenant == nil {
			// Resolution middleware missing or bypassed; fail closed.
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		claims := m.tokens.Verify(bearerToken(r))
		principal, err := m.binder.Bind(r.Context(), claims, tenant)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		ctx := contextkeys.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalHandler binds a principal when a valid token is present and
// passes the request through anonymously otherwise.
func (m *AuthMiddleware) OptionalHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := tenancy.FromContext(r)
		if tenant == nil {
			next.ServeHTTP(w, r)
			return
		}

		claims := m.tokens.Verify(bearerToken(r))
		principal, err := m.binder.BindOptional(r.Context(), claims, tenant)
		if err != nil {
			m.logger.FromContext(r.Context()).WithError(err).Error("optional bind failed")
			httputil.WriteBadGateway(w, "authentication backend unavailable")
			return
		}

		ctx := r.Context()
		if principal != nil {
			ctx = contextkeys.WithPrincipal(ctx, principal)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrIsolationViolation):
		// Already logged as a security event by the binder; the response
		// stays generic.
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidPayload),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrUserInactive):
		httputil.WriteUnauthorized(w, err.Error())
	default:
		m.logger.FromContext(r.Context()).WithError(err).Error("identity binding failed")
		httputil.WriteBadGateway(w, "authentication backend unavailable")
	}
}

// bearerToken extracts the token from the Authorization header, or returns
// "" when the header is absent or not a Bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// GetPrincipal retrieves the authenticated principal from the request, or
// nil for anonymous requests.
func GetPrincipal(r *http.Request) *auth.Principal {
	principal, ok := r.Context().Value(contextkeys.PrincipalKey).(*auth.Principal)
	if !ok {
		return nil
	}
	return principal
}

// RequireRole rejects requests whose principal does not hold at least the
// required role. Must run inside AuthMiddleware.Handler.
func RequireRole(required auth.Role, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r)
			if err := auth.Authorize(principal, required); err != nil {
				if metrics != nil {
					metrics.AuthorizationDenialsTotal.WithLabelValues(string(required)).Inc()
				}
				httputil.WriteForbidden(w, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
