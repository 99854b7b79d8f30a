// Package mintforge assembles the MintForge payment and launch services
// for embedding in another chi application or standalone serving.
package mintforge

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MintForge/server/internal/audit"
	"github.com/MintForge/server/internal/circuitbreaker"
	"github.com/MintForge/server/internal/config"
	"github.com/MintForge/server/internal/httpserver"
	"github.com/MintForge/server/internal/idempotency"
	"github.com/MintForge/server/internal/ledger"
	"github.com/MintForge/server/internal/lifecycle"
	"github.com/MintForge/server/internal/logger"
	"github.com/MintForge/server/internal/metrics"
	"github.com/MintForge/server/internal/packages"
	"github.com/MintForge/server/internal/payment"
	"github.com/MintForge/server/internal/session"
	"github.com/MintForge/server/internal/tokens"
)

// App wires the MintForge components for reuse or standalone serving.
type App struct {
	Config           *config.Config
	Ledger           ledger.Ledger
	Payments         *payment.Service
	Packages         *packages.Table
	Sessions         *session.Store
	Audit            *audit.Log
	Tokens           *tokens.Registry
	IdempotencyStore *idempotency.MemoryStore

	router           chi.Router
	resourceManager  *lifecycle.Manager
	metricsCollector *metrics.Metrics
}

// Option configures App construction.
type Option func(*options)

type options struct {
	ledger ledger.Ledger
	router chi.Router
}

// WithLedger injects a custom ledger backend (used by tests and embedders
// that already hold an RPC client).
func WithLedger(l ledger.Ledger) Option {
	return func(o *options) {
		o.ledger = l
	}
}

// WithRouter allows callers to provide an existing chi.Router to register routes onto.
func WithRouter(router chi.Router) Option {
	return func(o *options) {
		o.router = router
	}
}

// NewApp assembles MintForge services for embedding.
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("mintforge: config required")
	}

	optState := options{}
	for _, opt := range opts {
		opt(&optState)
	}

	app := &App{
		Config:          cfg,
		resourceManager: lifecycle.NewManager(),
	}

	metricsCollector := metrics.New(prometheus.DefaultRegisterer)
	app.metricsCollector = metricsCollector

	if optState.ledger != nil {
		app.Ledger = optState.ledger
	} else {
		breakers := circuitbreaker.NewManagerFromConfig(cfg.CircuitBreaker)
		rpcLedger := ledger.NewRPCLedger(ledger.Options{
			RPCURL:     cfg.Solana.RPCURL,
			Commitment: cfg.Solana.Commitment,
			Network:    cfg.Solana.Network,
			Breakers:   breakers,
			Metrics:    metricsCollector,
		})
		app.Ledger = rpcLedger
		app.resourceManager.RegisterFunc("solana-ledger", func() error {
			rpcLedger.Close()
			return nil
		})
	}

	app.Packages = packages.NewTable(cfg.Packages)
	app.Sessions = session.NewStore(cfg.Payments.SessionTTL.Duration)
	app.Audit = audit.NewLog(cfg.Payments.AuditLogCapacity)
	app.Tokens = tokens.NewRegistry(cfg.Payments.RecentTokensCapacity)

	app.Payments = payment.NewService(payment.Config{
		Packages:          app.Packages,
		Sessions:          app.Sessions,
		Ledger:            app.Ledger,
		Audit:             app.Audit,
		Tokens:            app.Tokens,
		Metrics:           metricsCollector,
		PlatformWallet:    cfg.Solana.PlatformWallet,
		ToleranceLamports: cfg.Payments.AmountTolerance,
	})

	// Shared idempotency store (single goroutine for cleanup)
	app.IdempotencyStore = idempotency.NewMemoryStore()
	app.resourceManager.RegisterFunc("idempotency-store", func() error {
		app.IdempotencyStore.Stop()
		return nil
	})

	if optState.router != nil {
		app.router = optState.router
	} else {
		app.router = chi.NewRouter()
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     "mintforge-embedded",
		Environment: cfg.Logging.Environment,
	})

	httpserver.ConfigureRouter(app.router, httpserver.Deps{
		Config:           cfg,
		Payments:         app.Payments,
		Packages:         app.Packages,
		Ledger:           app.Ledger,
		Audit:            app.Audit,
		Tokens:           app.Tokens,
		IdempotencyStore: app.IdempotencyStore,
		Metrics:          metricsCollector,
		Logger:           appLogger,
	})

	return app, nil
}

// Router returns the chi router with MintForge routes registered.
func (a *App) Router() chi.Router {
	return a.router
}

// Handler exposes the router as an http.Handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Close releases resources owned by the app (ledger client, etc).
func (a *App) Close() error {
	return a.resourceManager.Close()
}

// NewHandler is a convenience that constructs an App and returns its handler.
func NewHandler(cfg *config.Config, opts ...Option) (http.Handler, func(context.Context) error, error) {
	app, err := NewApp(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func(context.Context) error {
		return app.Close()
	}
	return app.Handler(), shutdown, nil
}

// Config is an exported alias of the internal configuration struct for embedding use.
type Config = config.Config

// LoadConfig wraps the internal loader for consumers embedding MintForge.
func LoadConfig(path string) (*config.Config, error) {
	return config.Load(path)
}
