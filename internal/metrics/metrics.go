package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for MintForge.
type Metrics struct {
	// Session metrics
	SessionsInitiatedTotal *prometheus.CounterVec
	SessionsActive         prometheus.Gauge

	// Verification metrics
	VerificationsTotal        *prometheus.CounterVec
	VerificationDuration      prometheus.Histogram
	PaymentAmountLamportsTotal *prometheus.CounterVec

	// Token registration metrics
	TokensRegisteredTotal *prometheus.CounterVec

	// RPC call metrics
	RPCCallsTotal   *prometheus.CounterVec
	RPCCallDuration *prometheus.HistogramVec
	RPCErrorsTotal  *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHitsTotal *prometheus.CounterVec

	// Audit log metrics
	AuditEntriesTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Session metrics
		SessionsInitiatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_sessions_initiated_total",
				Help: "Total number of payment sessions created",
			},
			[]string{"package"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mintforge_sessions_active",
				Help: "Number of pending and verified sessions currently held",
			},
		),

		// Verification metrics
		VerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_verifications_total",
				Help: "Total number of payment verification attempts by result",
			},
			[]string{"result"},
		),
		VerificationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mintforge_verification_duration_seconds",
				Help:    "Time taken to verify a payment including the ledger lookup",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		PaymentAmountLamportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_payment_amount_lamports_total",
				Help: "Total verified payment amount in lamports",
			},
			[]string{"package"},
		),

		// Token registration metrics
		TokensRegisteredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_tokens_registered_total",
				Help: "Total number of launched tokens registered",
			},
			[]string{"package"},
		),

		// RPC call metrics
		RPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_rpc_calls_total",
				Help: "Total number of RPC calls to the Solana ledger",
			},
			[]string{"method", "network"},
		),
		RPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mintforge_rpc_call_duration_seconds",
				Help:    "Duration of RPC calls to the Solana ledger (supports p50, p95, p99 percentiles)",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "network"},
		),
		RPCErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_rpc_errors_total",
				Help: "Total number of RPC errors",
			},
			[]string{"method", "network", "error_type"},
		),

		// Rate limiting metrics
		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"limit_type", "identifier"},
		),

		// Audit log metrics
		AuditEntriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mintforge_audit_entries_total",
				Help: "Total number of audit log entries recorded",
			},
			[]string{"type"},
		),
	}
}

// ObserveSessionInitiated records a new payment session.
func (m *Metrics) ObserveSessionInitiated(packageID string, activeSessions int) {
	m.SessionsInitiatedTotal.WithLabelValues(packageID).Inc()
	m.SessionsActive.Set(float64(activeSessions))
}

// ObserveVerification records a verification attempt and its outcome.
// On success the verified amount is added to the per-package payment counter.
func (m *Metrics) ObserveVerification(result, packageID string, duration time.Duration, amountLamports int64) {
	m.VerificationsTotal.WithLabelValues(result).Inc()
	m.VerificationDuration.Observe(duration.Seconds())
	if result == "verified" {
		m.PaymentAmountLamportsTotal.WithLabelValues(packageID).Add(float64(amountLamports))
	}
}

// ObserveTokenRegistered records a completed token registration.
func (m *Metrics) ObserveTokenRegistered(packageID string) {
	m.TokensRegisteredTotal.WithLabelValues(packageID).Inc()
}

// ObserveRPCCall records an RPC call to the ledger.
func (m *Metrics) ObserveRPCCall(method, network string, duration time.Duration, err error) {
	m.RPCCallsTotal.WithLabelValues(method, network).Inc()
	m.RPCCallDuration.WithLabelValues(method, network).Observe(duration.Seconds())

	if err != nil {
		errorType := "unknown"
		// Categorize errors
		if errStr := err.Error(); errStr != "" {
			switch {
			case strings.Contains(errStr, "timeout"):
				errorType = "timeout"
			case strings.Contains(errStr, "rate limit"):
				errorType = "rate_limit"
			case strings.Contains(errStr, "connection"):
				errorType = "connection"
			case strings.Contains(errStr, "not found"):
				errorType = "not_found"
			default:
				errorType = "other"
			}
		}
		m.RPCErrorsTotal.WithLabelValues(method, network, errorType).Inc()
	}
}

// ObserveRateLimit records a rate limit hit.
func (m *Metrics) ObserveRateLimit(limitType, identifier string) {
	m.RateLimitHitsTotal.WithLabelValues(limitType, identifier).Inc()
}

// ObserveAuditEntry records an audit log write.
func (m *Metrics) ObserveAuditEntry(entryType string) {
	m.AuditEntriesTotal.WithLabelValues(entryType).Inc()
}
