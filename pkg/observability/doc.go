// Package observability provides structured logging, Prometheus metrics, health
// checks, and OpenTelemetry tracing for the Atrium platform.
//
// # Structured Logging
//
// Create a logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("tenant_id", tenant.ID).Info("tenant resolved")
//
// Security-relevant events (tenant isolation violations, failed logins) use
// the dedicated helper so alerting can key off the security_event field:
//
//	logger.SecurityEvent("tenant_isolation_violation", map[string]interface{}{
//		"user_id":         claims.Subject,
//		"claimed_tenant":  claims.TenantID,
//		"resolved_tenant": tenant.ID,
//	})
//
// # Prometheus Metrics
//
// Initialize and register metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
//
// # Health Checks
//
// The health checker reports the record store as required and the rate-limit
// counter store as optional (degraded only), mirroring the admission
// controller's fail-open policy:
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// # Related Packages
//
//   - pkg/config: observability configuration
//   - pkg/middleware: pipeline middleware that records these metrics
package observability
