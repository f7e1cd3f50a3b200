package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	TenantResolutionsTotal    *prometheus.CounterVec
	AuthFailuresTotal         *prometheus.CounterVec
	IsolationViolationsTotal  prometheus.Counter
	AuthorizationDenialsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimitDecisionsTotal *prometheus.CounterVec
	RateLimitDegradedTotal  prometheus.Counter

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Tenant cache metrics
	TenantCacheHitsTotal   prometheus.Counter
	TenantCacheMissesTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atrium_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atrium_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		TenantResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atrium_tenant_resolutions_total",
				Help: "Total number of tenant resolution attempts",
			},
			[]string{"outcome"}, // resolved, missing_identifier, not_found, inactive, error
		),
		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atrium_auth_failures_total",
				Help: "Total number of authentication failures",
			},
			[]string{"reason"},
		),
		IsolationViolationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "atrium_tenant_isolation_violations_total",
				Help: "Total number of detected tenant isolation violations",
			},
		),
		AuthorizationDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atrium_authorization_denials_total",
				Help: "Total number of authorization denials",
			},
			[]string{"required_role"},
		),

		RateLimitDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atrium_rate_limit_decisions_total",
				Help: "Total number of rate limit admission decisions",
			},
			[]string{"decision"}, // allowed, denied, bypassed
		),
		RateLimitDegradedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "atrium_rate_limit_degraded_total",
				Help: "Total number of requests admitted because the rate limit store was unavailable",
			},
		),

		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atrium_store_operations_total",
				Help: "Total number of record store operations",
			},
			[]string{"operation", "status"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atrium_store_operation_duration_seconds",
				Help:    "Record store operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),

		TenantCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "atrium_tenant_cache_hits_total",
				Help: "Total number of tenant cache hits",
			},
		),
		TenantCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "atrium_tenant_cache_misses_total",
				Help: "Total number of tenant cache misses",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TenantResolutionsTotal,
		m.AuthFailuresTotal,
		m.IsolationViolationsTotal,
		m.AuthorizationDenialsTotal,
		m.RateLimitDecisionsTotal,
		m.RateLimitDegradedTotal,
		m.StoreOperationsTotal,
		m.StoreOperationDuration,
		m.TenantCacheHitsTotal,
		m.TenantCacheMissesTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
