package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/MintForge/server/internal/apikey"
	"github.com/MintForge/server/internal/audit"
	"github.com/MintForge/server/internal/config"
	"github.com/MintForge/server/internal/idempotency"
	"github.com/MintForge/server/internal/ledger"
	"github.com/MintForge/server/internal/logger"
	"github.com/MintForge/server/internal/metrics"
	"github.com/MintForge/server/internal/packages"
	"github.com/MintForge/server/internal/payment"
	"github.com/MintForge/server/internal/ratelimit"
	"github.com/MintForge/server/internal/tokens"
	"github.com/MintForge/server/internal/versioning"
)

var (
	serverStartTime = time.Now()
)

// Server wires handlers, middleware, and dependencies.
type Server struct {
	handlers
	httpServer *http.Server
}

type handlers struct {
	cfg              *config.Config
	payments         *payment.Service
	packages         *packages.Table
	ledger           ledger.Ledger
	audit            *audit.Log
	tokens           *tokens.Registry
	idempotencyStore idempotency.Store
	metrics          *metrics.Metrics
	logger           zerolog.Logger
}

// Deps carries the dependencies the HTTP layer serves.
type Deps struct {
	Config           *config.Config
	Payments         *payment.Service
	Packages         *packages.Table
	Ledger           ledger.Ledger
	Audit            *audit.Log
	Tokens           *tokens.Registry
	IdempotencyStore idempotency.Store
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
}

// New builds the HTTP server with configured router.
func New(deps Deps) *Server {
	router := chi.NewRouter()

	s := &Server{
		handlers: newHandlers(deps),
		httpServer: &http.Server{
			Addr:         deps.Config.Server.Address,
			ReadTimeout:  deps.Config.Server.ReadTimeout.Duration,
			WriteTimeout: deps.Config.Server.WriteTimeout.Duration,
			IdleTimeout:  deps.Config.Server.IdleTimeout.Duration,
			Handler:      router,
		},
	}

	ConfigureRouter(router, deps)

	return s
}

func newHandlers(deps Deps) handlers {
	return handlers{
		cfg:              deps.Config,
		payments:         deps.Payments,
		packages:         deps.Packages,
		ledger:           deps.Ledger,
		audit:            deps.Audit,
		tokens:           deps.Tokens,
		idempotencyStore: deps.IdempotencyStore,
		metrics:          deps.Metrics,
		logger:           deps.Logger,
	}
}

// ConfigureRouter attaches MintForge routes to an existing router.
func ConfigureRouter(router chi.Router, deps Deps) {
	if router == nil {
		return
	}

	handler := newHandlers(deps)
	cfg := deps.Config

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}).Handler)
	}

	// Security headers middleware (applied first for all responses)
	router.Use(securityHeadersMiddleware)

	// Structured logging middleware (BEFORE RequestID for context propagation)
	router.Use(logger.Middleware(deps.Logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	// API version negotiation middleware (adds version to context from Accept header)
	router.Use(versioning.Negotiation)

	// API key authentication middleware (BEFORE rate limiting)
	// Extracts X-API-Key header and stores tier in context for rate limit exemptions
	apiKeyCfg := apikey.Config{
		Enabled: cfg.APIKey.Enabled,
		APIKeys: make(map[string]apikey.Tier),
	}
	for key, tierStr := range cfg.APIKey.Keys {
		apiKeyCfg.APIKeys[key] = apikey.Tier(tierStr)
	}
	router.Use(apikey.Middleware(apiKeyCfg))

	// Rate limiting middleware (applied globally)
	rateLimitCfg := ratelimit.Config{
		GlobalEnabled:    cfg.RateLimit.GlobalEnabled,
		GlobalLimit:      cfg.RateLimit.GlobalLimit,
		GlobalWindow:     cfg.RateLimit.GlobalWindow.Duration,
		PerWalletEnabled: cfg.RateLimit.PerWalletEnabled,
		PerWalletLimit:   cfg.RateLimit.PerWalletLimit,
		PerWalletWindow:  cfg.RateLimit.PerWalletWindow.Duration,
		PerIPEnabled:     cfg.RateLimit.PerIPEnabled,
		PerIPLimit:       cfg.RateLimit.PerIPLimit,
		PerIPWindow:      cfg.RateLimit.PerIPWindow.Duration,
		Metrics:          deps.Metrics,
	}
	router.Use(ratelimit.GlobalLimiter(rateLimitCfg))
	router.Use(ratelimit.WalletLimiter(rateLimitCfg))
	router.Use(ratelimit.IPLimiter(rateLimitCfg))

	prefix := cfg.Server.RoutePrefix

	// Lightweight endpoints with 5s timeout (health, discovery, metrics)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Get(prefix+"/health", handler.health)
		r.Get(prefix+"/packages", handler.listPackages)
		r.Get(prefix+"/platform-wallet", handler.platformWallet)
		// Prometheus metrics endpoint, protected by optional admin API key
		r.With(adminAuth(cfg.Server.AdminMetricsAPIKey)).Handle(prefix+"/metrics", promhttp.Handler())
	})

	// Idempotency middleware for payment mutations
	idempotencyMW := idempotency.Middleware(deps.IdempotencyStore, cfg.Payments.IdempotencyTTL.Duration)

	// Payment and registration endpoints with 30s timeout (ledger lookups)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.With(idempotencyMW).Post(prefix+"/payment/initiate", handler.initiatePayment)
		r.Post(prefix+"/payment/verify", handler.verifyPayment)
		r.Get(prefix+"/payment/status/{sessionID}", handler.paymentStatus)

		r.With(idempotencyMW).Post(prefix+"/tokens/register", handler.registerToken)
		r.Get(prefix+"/tokens/recent", handler.recentTokens)

		r.With(adminAuth(cfg.Server.AdminLogsAPIKey)).Get(prefix+"/logs", handler.auditLogs)
	})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
