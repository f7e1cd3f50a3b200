package tenancy

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atriumhq/atrium/pkg/contextkeys"
	"github.com/atriumhq/atrium/pkg/httputil"
	"github.com/atriumhq/atrium/pkg/observability"
)

// Middleware resolves the tenant for every request and injects it into the
// request context. This is the first line of defense for tenant isolation:
// if it fails, the entire isolation model downstream breaks.
type Middleware struct {
	resolver      *Resolver
	excludedPaths []string
	logger        *observability.Logger
	metrics       *observability.Metrics
}

// NewMiddleware creates the tenant resolution middleware. Metrics may be nil.
func NewMiddleware(resolver *Resolver, excludedPaths []string, logger *observability.Logger, metrics *observability.Metrics) *Middleware {
	return &Middleware{
		resolver:      resolver,
		excludedPaths: excludedPaths,
		logger:        logger,
		metrics:       metrics,
	}
}

// Handler wraps an HTTP handler with tenant resolution. Excluded paths pass
// through with no tenant context at all.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExcluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tenant, err := m.resolver.Resolve(r.Context(), r)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		m.countResolution("resolved")
		m.logger.FromContext(r.Context()).
			WithField("tenant_id", tenant.ID).
			WithField("tenant_slug", tenant.Slug).
			Debug("tenant resolved")

		ctx := contextkeys.WithTenant(r.Context(), tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	log := m.logger.FromContext(r.Context()).WithField("path", r.URL.Path)

	switch {
	case errors.Is(err, ErrMissingIdentifier):
		m.countResolution("missing_identifier")
		log.Warn("no tenant identifier in request")
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		m.countResolution("not_found")
		log.Warn("tenant not found")
		httputil.WriteNotFound(w, err.Error())
	case errors.Is(err, ErrInactive):
		m.countResolution("inactive")
		log.Warn("inactive tenant attempted access")
		httputil.WriteForbidden(w, err.Error())
	default:
		// Directory infrastructure fault: the record store is the store of
		// record, so this is fatal to the request.
		m.countResolution("error")
		log.WithError(err).Error("tenant directory lookup failed")
		httputil.WriteBadGateway(w, "tenant directory unavailable")
	}
}

func (m *Middleware) isExcluded(path string) bool {
	for _, prefix := range m.excludedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *Middleware) countResolution(outcome string) {
	if m.metrics != nil {
		m.metrics.TenantResolutionsTotal.WithLabelValues(outcome).Inc()
	}
}

// FromContext retrieves the resolved tenant from the request context, or nil
// when the request bypassed tenant resolution.
func FromContext(r *http.Request) *Tenant {
	tenant, ok := r.Context().Value(contextkeys.TenantKey).(*Tenant)
	if !ok {
		return nil
	}
	return tenant
}
