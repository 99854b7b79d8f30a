package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInitialization(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("metrics collector should not be nil")
	}

	// Verify all metrics are initialized
	if m.SessionsInitiatedTotal == nil {
		t.Error("SessionsInitiatedTotal should be initialized")
	}
	if m.SessionsActive == nil {
		t.Error("SessionsActive should be initialized")
	}
	if m.VerificationsTotal == nil {
		t.Error("VerificationsTotal should be initialized")
	}
	if m.PaymentAmountLamportsTotal == nil {
		t.Error("PaymentAmountLamportsTotal should be initialized")
	}
	if m.TokensRegisteredTotal == nil {
		t.Error("TokensRegisteredTotal should be initialized")
	}
	if m.RPCCallsTotal == nil {
		t.Error("RPCCallsTotal should be initialized")
	}
	if m.RPCCallDuration == nil {
		t.Error("RPCCallDuration should be initialized")
	}
	if m.RPCErrorsTotal == nil {
		t.Error("RPCErrorsTotal should be initialized")
	}
	if m.AuditEntriesTotal == nil {
		t.Error("AuditEntriesTotal should be initialized")
	}
}

func TestObserveSessionInitiated(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveSessionInitiated("starter", 3)

	count := promtest.ToFloat64(m.SessionsInitiatedTotal.WithLabelValues("starter"))
	if count != 1 {
		t.Errorf("expected 1 initiated session, got %.0f", count)
	}

	active := promtest.ToFloat64(m.SessionsActive)
	if active != 3 {
		t.Errorf("expected 3 active sessions, got %.0f", active)
	}
}

func TestObserveVerification(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveVerification("verified", "pro", 1*time.Second, 450_000_000)

	count := promtest.ToFloat64(m.VerificationsTotal.WithLabelValues("verified"))
	if count != 1 {
		t.Errorf("expected 1 verification, got %.0f", count)
	}

	amount := promtest.ToFloat64(m.PaymentAmountLamportsTotal.WithLabelValues("pro"))
	if amount != 450_000_000 {
		t.Errorf("expected 450000000 lamports recorded, got %.0f", amount)
	}
}

func TestObserveVerification_FailureDoesNotCountAmount(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveVerification("insufficient_amount", "pro", 1*time.Second, 0)

	count := promtest.ToFloat64(m.VerificationsTotal.WithLabelValues("insufficient_amount"))
	if count != 1 {
		t.Errorf("expected 1 failed verification, got %.0f", count)
	}

	amount := promtest.ToFloat64(m.PaymentAmountLamportsTotal.WithLabelValues("pro"))
	if amount != 0 {
		t.Errorf("expected no lamports recorded for failure, got %.0f", amount)
	}
}

func TestObserveTokenRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveTokenRegistered("launch")

	count := promtest.ToFloat64(m.TokensRegisteredTotal.WithLabelValues("launch"))
	if count != 1 {
		t.Errorf("expected 1 token registration, got %.0f", count)
	}
}

func TestObserveRPCCall(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		network    string
		duration   time.Duration
		err        error
		wantCalls  float64
		wantErrors float64
	}{
		{
			name:      "successful RPC call",
			method:    "getTransaction",
			network:   "devnet",
			duration:  100 * time.Millisecond,
			err:       nil,
			wantCalls: 1,
		},
		{
			name:       "failed RPC call with connection error",
			method:     "getTransaction",
			network:    "devnet",
			duration:   100 * time.Millisecond,
			err:        &testError{msg: "connection reset"},
			wantCalls:  1,
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := prometheus.NewRegistry()
			m := New(registry)

			m.ObserveRPCCall(tt.method, tt.network, tt.duration, tt.err)

			calls := promtest.ToFloat64(m.RPCCallsTotal.WithLabelValues(tt.method, tt.network))
			if calls != tt.wantCalls {
				t.Errorf("expected %.0f RPC calls, got %.0f", tt.wantCalls, calls)
			}

			if tt.err != nil {
				// Error type should be "connection" because error message contains "connection"
				errors := promtest.ToFloat64(m.RPCErrorsTotal.WithLabelValues(tt.method, tt.network, "connection"))
				if errors != tt.wantErrors {
					t.Errorf("expected %.0f RPC errors, got %.0f", tt.wantErrors, errors)
				}
			}
		})
	}
}

func TestObserveRateLimit(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveRateLimit("per_wallet", "wallet123")

	hits := promtest.ToFloat64(m.RateLimitHitsTotal.WithLabelValues("per_wallet", "wallet123"))
	if hits != 1 {
		t.Errorf("expected 1 rate limit hit, got %.0f", hits)
	}
}

func TestObserveAuditEntry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveAuditEntry("payment_verified")

	count := promtest.ToFloat64(m.AuditEntriesTotal.WithLabelValues("payment_verified"))
	if count != 1 {
		t.Errorf("expected 1 audit entry, got %.0f", count)
	}
}

// testError is a simple error type for testing
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
