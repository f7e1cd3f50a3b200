package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atriumhq/atrium/pkg/observability"
)

// Config holds all application configuration. It is loaded once at startup
// and passed to components by value or pointer at construction; nothing reads
// the environment after load.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	Tenancy       TenancyConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds record store configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// RedisConfig holds rate-limit counter store configuration
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	// JWTSecret is the HS256 shared secret for access tokens.
	JWTSecret string
	// TokenLifetime is the access token validity window.
	TokenLifetime time.Duration
}

// RateLimitConfig holds the global admission defaults; tenants may carry
// per-tenant overrides in the directory.
type RateLimitConfig struct {
	// RequestsPerMinute is the refill rate of the token bucket.
	RequestsPerMinute int
	// Burst is the bucket capacity.
	Burst int
	// FailClosed rejects requests with 503 when the counter store is
	// unreachable instead of the default fail-open admission.
	FailClosed bool
	// ExcludedPaths bypass admission entirely.
	ExcludedPaths []string
}

// TenancyConfig holds tenant resolution configuration
type TenancyConfig struct {
	// ExcludedPaths bypass tenant resolution (health checks, docs).
	ExcludedPaths []string
	// CacheEnabled turns on the in-process LRU tenant cache.
	CacheEnabled bool
	// CacheSize is the maximum number of cached tenants.
	CacheSize int
	// CacheTTL bounds staleness of cached tenant records.
	CacheTTL time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		Auth:          loadAuthConfig(),
		RateLimit:     loadRateLimitConfig(),
		Tenancy:       loadTenancyConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("ATRIUM_HOST", "0.0.0.0"),
		Port:            getEnv("ATRIUM_PORT", "8080"),
		ReadTimeout:     getEnvDuration("ATRIUM_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("ATRIUM_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("ATRIUM_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("ATRIUM_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("ATRIUM_HEALTH_PORT", "9090"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("ATRIUM_DATABASE_URL", "postgres://localhost/atrium_dev?sslmode=disable"),
		MaxOpenConns:    getEnvInt("ATRIUM_DATABASE_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    getEnvInt("ATRIUM_DATABASE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("ATRIUM_DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		QueryTimeout:    getEnvDuration("ATRIUM_DATABASE_QUERY_TIMEOUT", 3*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          getEnv("ATRIUM_REDIS_URL", "redis://localhost:6379/0"),
		DialTimeout:  getEnvDuration("ATRIUM_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("ATRIUM_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("ATRIUM_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:     getEnv("ATRIUM_JWT_SECRET", "dev-secret-key-change-in-production"),
		TokenLifetime: time.Duration(getEnvInt("ATRIUM_TOKEN_LIFETIME_MINUTES", 30)) * time.Minute,
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: getEnvInt("ATRIUM_RATE_LIMIT_PER_MINUTE", 60),
		Burst:             getEnvInt("ATRIUM_RATE_LIMIT_BURST", 10),
		FailClosed:        getEnvBool("ATRIUM_RATE_LIMIT_FAIL_CLOSED", false),
		ExcludedPaths:     getEnvList("ATRIUM_RATE_LIMIT_EXCLUDED_PATHS", defaultExcludedPaths()),
	}
}

func loadTenancyConfig() TenancyConfig {
	return TenancyConfig{
		ExcludedPaths: getEnvList("ATRIUM_TENANT_EXCLUDED_PATHS", defaultExcludedPaths()),
		CacheEnabled:  getEnvBool("ATRIUM_TENANT_CACHE_ENABLED", false),
		CacheSize:     getEnvInt("ATRIUM_TENANT_CACHE_SIZE", 1024),
		CacheTTL:      getEnvDuration("ATRIUM_TENANT_CACHE_TTL", 30*time.Second),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("ATRIUM_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("ATRIUM_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("ATRIUM_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("ATRIUM_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("ATRIUM_OTEL_SERVICE_NAME", "atrium"),
		OTelServiceVersion: getEnv("ATRIUM_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("ATRIUM_OTEL_INSECURE", true),
	}
}

func defaultExcludedPaths() []string {
	return []string{"/health", "/metrics", "/docs"}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.TokenLifetime <= 0 {
		return fmt.Errorf("token lifetime must be positive")
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit requests per minute must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Tenancy.CacheEnabled {
		if c.Tenancy.CacheSize <= 0 {
			return fmt.Errorf("tenant cache size must be positive when the cache is enabled")
		}
		if c.Tenancy.CacheTTL <= 0 {
			return fmt.Errorf("tenant cache TTL must be positive when the cache is enabled")
		}
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a slice
func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
