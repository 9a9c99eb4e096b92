// Package api provides the HTTP API for togstats.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/togstats/togstats/internal/api/handler"
	"github.com/togstats/togstats/internal/api/middleware"
	"github.com/togstats/togstats/internal/auth"
	"github.com/togstats/togstats/internal/departure"
	"github.com/togstats/togstats/internal/provider/resilience"
	"github.com/togstats/togstats/internal/region"
	"github.com/togstats/togstats/internal/stats"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	TokenService  *auth.TokenService
	StatsService  *stats.Service
	DepartureRepo departure.Repository
	Region        *region.Region

	// DB is pinged by the readiness and status endpoints. Optional.
	DB handler.Pinger

	// Registry reports upstream circuit state on the status endpoint. Optional.
	Registry *resilience.Registry

	// Publisher queues manual ingest runs. Optional; without it the admin
	// trigger returns 503.
	Publisher handler.IngestPublisher

	// AllowedOrigins configures CORS for the dashboard. Empty allows none.
	AllowedOrigins []string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "togstats-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Registry)
	statsHandler := handler.NewStatsHandler(cfg.StatsService)
	departuresHandler := handler.NewDeparturesHandler(cfg.DepartureRepo)
	regionHandler := handler.NewRegionHandler(cfg.Region)
	adminHandler := handler.NewAdminHandler(cfg.Publisher)

	adminAuth := middleware.AdminAuth(cfg.TokenService)

	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)       // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(adminAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Statistics endpoints (public) - standard rate limiting
		r.Route("/stats", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/daily", statsHandler.ListDaily)
			r.Get("/routes", statsHandler.ListRoutes)
			r.Get("/hourly", statsHandler.ListHourly)
			r.Get("/summary", statsHandler.Summary)
		})

		// Departure audit trail (public) - standard rate limiting
		r.With(standardRateLimit).Get("/departures/recent", departuresHandler.ListRecent)

		// Region configuration (public)
		r.With(standardRateLimit).Get("/region", regionHandler.Get)

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(adminRateLimit)
			r.Post("/ingest/run", adminHandler.TriggerIngest)
		})
	})

	return r
}
