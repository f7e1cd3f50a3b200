package api

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/config"
	"github.com/atriumhq/atrium/pkg/middleware"
	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/store"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// Server is the HTTP API. It assembles the request pipeline in its fixed
// order: request ID, panic recovery, tenant resolution, admission control,
// then per-route authentication and role gates.
type Server struct {
	router  *mux.Router
	cfg     *config.Config
	store   store.Store
	tokens  *auth.TokenService
	binder  *auth.Binder
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewServer wires the pipeline and routes. Metrics may be nil; the Redis
// client backs the rate limiter and may be unreachable at runtime without
// failing construction (admission degrades per config).
func NewServer(cfg *config.Config, st store.Store, redisClient *redis.Client, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		cfg:     cfg,
		store:   st,
		tokens:  auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime),
		binder:  auth.NewBinder(st, logger, metrics),
		logger:  logger,
		metrics: metrics,
	}

	var directory tenancy.Directory = st
	if cfg.Tenancy.CacheEnabled {
		directory = tenancy.NewCachingDirectory(st, cfg.Tenancy.CacheSize, cfg.Tenancy.CacheTTL, metrics)
	}
	resolver := tenancy.NewResolver(directory)
	tenantMW := tenancy.NewMiddleware(resolver, cfg.Tenancy.ExcludedPaths, logger, metrics)

	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit, logger, metrics)
	rateLimitMW := middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit, logger, metrics)

	s.router.Use(middleware.RequestID)
	s.router.Use(observability.PanicRecoveryMiddleware(logger))
	if metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(metrics))
	}
	s.router.Use(tenantMW.Handler)
	s.router.Use(rateLimitMW.Handler)

	authMW := middleware.NewAuthMiddleware(s.tokens, s.binder, logger)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Auth endpoints authenticate by credentials, not bearer token.
	v1.HandleFunc("/auth/login", s.login).Methods("POST")
	v1.HandleFunc("/auth/register", s.register).Methods("POST")
	v1.HandleFunc("/auth/refresh", s.refreshToken).Methods("POST")

	protected := v1.NewRoute().Subrouter()
	protected.Use(authMW.Handler)

	protected.HandleFunc("/auth/me", s.currentUser).Methods("GET")

	protected.HandleFunc("/users", s.listUsers).Methods("GET")
	protected.HandleFunc("/users", s.createUser).Methods("POST")
	protected.HandleFunc("/users/{id}", s.getUser).Methods("GET")
	protected.HandleFunc("/users/{id}", s.updateUser).Methods("PATCH")
	protected.HandleFunc("/users/{id}", s.deleteUser).Methods("DELETE")

	protected.HandleFunc("/projects", s.listProjects).Methods("GET")
	protected.HandleFunc("/projects", s.createProject).Methods("POST")
	protected.HandleFunc("/projects/{id}", s.getProject).Methods("GET")
	protected.HandleFunc("/projects/{id}", s.updateProject).Methods("PATCH")
	protected.HandleFunc("/projects/{id}", s.deleteProject).Methods("DELETE")

	protected.HandleFunc("/projects/{id}/resources", s.listResources).Methods("GET")
	protected.HandleFunc("/projects/{id}/resources", s.createResource).Methods("POST")
	protected.HandleFunc("/resources/{id}", s.getResource).Methods("GET")
	protected.HandleFunc("/resources/{id}", s.updateResource).Methods("PATCH")
	protected.HandleFunc("/resources/{id}", s.deleteResource).Methods("DELETE")

	return s
}

// Router exposes the assembled handler for the HTTP server and tests.
func (s *Server) Router() http.Handler {
	return s.router
}
