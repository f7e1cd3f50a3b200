// Package config provides application configuration management from environment variables.
//
// Configuration is loaded once at startup with LoadConfig, validated, and then
// passed to components at construction. No component reads the environment or
// consults a global after that.
//
// Server settings:
//
//	ATRIUM_HOST="0.0.0.0"
//	ATRIUM_PORT="8080"
//	ATRIUM_HEALTH_PORT="9090"
//	ATRIUM_SHUTDOWN_TIMEOUT="30s"
//
// Record store:
//
//	ATRIUM_DATABASE_URL="postgres://localhost/atrium_dev?sslmode=disable"
//	ATRIUM_DATABASE_QUERY_TIMEOUT="3s"
//
// Token signing:
//
//	ATRIUM_JWT_SECRET="..."                 # HS256 shared secret
//	ATRIUM_TOKEN_LIFETIME_MINUTES="30"
//
// Admission control:
//
//	ATRIUM_REDIS_URL="redis://localhost:6379/0"
//	ATRIUM_RATE_LIMIT_PER_MINUTE="60"
//	ATRIUM_RATE_LIMIT_BURST="10"
//	ATRIUM_RATE_LIMIT_FAIL_CLOSED="false"   # default is fail-open
//
// Tenant resolution:
//
//	ATRIUM_TENANT_EXCLUDED_PATHS="/health,/metrics,/docs"
//	ATRIUM_TENANT_CACHE_ENABLED="false"
package config
