// Package payment implements the payment-session lifecycle: initiate a
// priced session, verify its on-chain settlement, and gate token
// registration on that verification.
package payment

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/MintForge/server/internal/audit"
	apierrors "github.com/MintForge/server/internal/errors"
	"github.com/MintForge/server/internal/ledger"
	"github.com/MintForge/server/internal/logger"
	"github.com/MintForge/server/internal/metrics"
	"github.com/MintForge/server/internal/packages"
	"github.com/MintForge/server/internal/session"
	solanaaddr "github.com/MintForge/server/internal/solana"
	"github.com/MintForge/server/internal/tokens"
)

// Service coordinates sessions, the ledger, the audit log, and the
// token registry. All per-session work runs under a keyed lock so a
// concurrent verify and register for the same id observe each other's
// completed state, never a half-applied one.
type Service struct {
	packages *packages.Table
	sessions *session.Store
	ledger   ledger.Ledger
	audit    *audit.Log
	tokens   *tokens.Registry
	metrics  *metrics.Metrics

	platformWallet string
	tolerance      int64

	locks *sessionLocks
}

// Config wires a Service.
type Config struct {
	Packages       *packages.Table
	Sessions       *session.Store
	Ledger         ledger.Ledger
	Audit          *audit.Log
	Tokens         *tokens.Registry
	Metrics        *metrics.Metrics
	PlatformWallet string

	// ToleranceLamports is the allowed shortfall between the expected
	// amount and the observed balance delta, absorbing payer-side fee
	// rounding.
	ToleranceLamports int64
}

// NewService creates a payment service.
func NewService(cfg Config) *Service {
	return &Service{
		packages:       cfg.Packages,
		sessions:       cfg.Sessions,
		ledger:         cfg.Ledger,
		audit:          cfg.Audit,
		tokens:         cfg.Tokens,
		metrics:        cfg.Metrics,
		platformWallet: cfg.PlatformWallet,
		tolerance:      cfg.ToleranceLamports,
		locks:          newSessionLocks(),
	}
}

// Initiation is the result of starting a payment session.
type Initiation struct {
	SessionID      string
	PlatformWallet string
	Package        packages.Package
}

// Initiate creates a pending session for the given package. The
// expected amount always comes from the package table, never the caller.
func (s *Service) Initiate(ctx context.Context, packageID, userWallet string) (Initiation, error) {
	pkg, err := s.packages.Get(packageID)
	if err != nil {
		return Initiation{}, newError(apierrors.ErrCodeInvalidPackage, "unknown package: "+packageID)
	}

	if !solanaaddr.IsValidAddress(userWallet) {
		return Initiation{}, newError(apierrors.ErrCodeInvalidWallet, "userWallet is not a valid solana address")
	}

	intent := s.sessions.Create(pkg.ID, pkg.Label, pkg.Lamports, userWallet)

	if s.metrics != nil {
		s.metrics.ObserveSessionInitiated(pkg.ID, s.sessions.Len())
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("session_id", intent.ID).
		Str("package", pkg.ID).
		Str("wallet", logger.TruncateAddress(userWallet)).
		Int64("amount_lamports", pkg.Lamports).
		Msg("payment.initiated")

	return Initiation{
		SessionID:      intent.ID,
		PlatformWallet: s.platformWallet,
		Package:        pkg,
	}, nil
}

// Verification is the result of a successful (or already settled) verify.
type Verification struct {
	SessionID       string
	PackageID       string
	PackageLabel    string
	Signature       string
	AlreadyVerified bool
}

// Verify checks that the given transaction settled the session's
// payment. A session already verified returns immediately without a
// second ledger query; the stored signature wins.
func (s *Service) Verify(ctx context.Context, sessionID, signature string) (Verification, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	start := time.Now()
	log := logger.FromContext(ctx)

	intent, err := s.sessions.Get(sessionID)
	if err != nil || s.sessions.IsExpired(intent) {
		s.observeVerification("session_not_found", "", start, 0)
		s.record(audit.TypePaymentVerifyFail, map[string]interface{}{
			"sessionId": sessionID,
			"reason":    string(apierrors.ErrCodeSessionNotFound),
		})
		return Verification{}, newError(apierrors.ErrCodeSessionNotFound, "session not found or expired")
	}

	if intent.Verified {
		log.Debug().
			Str("session_id", sessionID).
			Str("signature", logger.TruncateAddress(intent.Signature)).
			Msg("payment.already_verified")
		return Verification{
			SessionID:       intent.ID,
			PackageID:       intent.PackageID,
			PackageLabel:    intent.PackageLabel,
			Signature:       intent.Signature,
			AlreadyVerified: true,
		}, nil
	}

	record, err := s.ledger.Transaction(ctx, signature)
	if err != nil {
		return Verification{}, s.verifyLookupError(ctx, intent, signature, start, err)
	}

	if record.Failed {
		s.observeVerification("transaction_failed", intent.PackageID, start, 0)
		s.record(audit.TypePaymentVerifyFail, map[string]interface{}{
			"sessionId":   intent.ID,
			"package":     intent.PackageID,
			"txSignature": signature,
			"reason":      string(apierrors.ErrCodeTransactionFailed),
		})
		return Verification{}, newError(apierrors.ErrCodeTransactionFailed, "transaction failed on chain")
	}

	idx := -1
	for i, key := range record.AccountKeys {
		if key == s.platformWallet {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.observeVerification("wrong_recipient", intent.PackageID, start, 0)
		s.record(audit.TypePaymentVerifyFail, map[string]interface{}{
			"sessionId":   intent.ID,
			"package":     intent.PackageID,
			"txSignature": signature,
			"reason":      string(apierrors.ErrCodeWrongRecipient),
		})
		return Verification{}, newError(apierrors.ErrCodeWrongRecipient, "platform wallet not involved in transaction")
	}

	if idx >= len(record.PreBalances) || idx >= len(record.PostBalances) {
		s.observeVerification("rpc_error", intent.PackageID, start, 0)
		s.record(audit.TypePaymentVerifyError, map[string]interface{}{
			"sessionId":   intent.ID,
			"package":     intent.PackageID,
			"txSignature": signature,
			"reason":      "balance arrays shorter than account keys",
		})
		return Verification{}, newError(apierrors.ErrCodeRPCError, "malformed transaction record from ledger")
	}

	received := int64(record.PostBalances[idx]) - int64(record.PreBalances[idx])
	expected := intent.ExpectedLamports

	if received < expected-s.tolerance {
		s.observeVerification("insufficient_amount", intent.PackageID, start, 0)
		s.record(audit.TypePaymentVerifyFail, map[string]interface{}{
			"sessionId":   intent.ID,
			"package":     intent.PackageID,
			"txSignature": signature,
			"reason":      string(apierrors.ErrCodeInsufficientAmount),
			"expected":    expected,
			"received":    received,
		})
		return Verification{}, &Error{
			Code:     apierrors.ErrCodeInsufficientAmount,
			Message:  "payment amount below package price",
			Expected: expected,
			Received: received,
		}
	}

	if err := s.sessions.MarkVerified(intent.ID, signature); err != nil {
		// The session vanished between Get and MarkVerified; treat as expiry.
		s.observeVerification("session_not_found", intent.PackageID, start, 0)
		return Verification{}, newError(apierrors.ErrCodeSessionNotFound, "session not found or expired")
	}

	s.observeVerification("verified", intent.PackageID, start, received)
	s.record(audit.TypePaymentVerified, map[string]interface{}{
		"sessionId":   intent.ID,
		"package":     intent.PackageID,
		"wallet":      intent.Wallet,
		"txSignature": signature,
		"expected":    expected,
		"received":    received,
	})

	log.Info().
		Str("session_id", intent.ID).
		Str("package", intent.PackageID).
		Str("signature", logger.TruncateAddress(signature)).
		Int64("received_lamports", received).
		Msg("payment.verified")

	return Verification{
		SessionID:    intent.ID,
		PackageID:    intent.PackageID,
		PackageLabel: intent.PackageLabel,
		Signature:    signature,
	}, nil
}

// verifyLookupError classifies a ledger lookup failure.
func (s *Service) verifyLookupError(ctx context.Context, intent session.Intent, signature string, start time.Time, err error) error {
	log := logger.FromContext(ctx)

	var sigErr *ledger.SignatureError
	if stderrors.As(err, &sigErr) {
		s.observeVerification("invalid_signature", intent.PackageID, start, 0)
		s.record(audit.TypePaymentVerifyFail, map[string]interface{}{
			"sessionId":   intent.ID,
			"package":     intent.PackageID,
			"txSignature": signature,
			"reason":      string(apierrors.ErrCodeInvalidSignature),
		})
		return wrapError(apierrors.ErrCodeInvalidSignature, "transaction signature is not valid base58", err)
	}

	if stderrors.Is(err, ledger.ErrNotFound) {
		// Not terminal: the transaction may still settle, so no audit
		// entry and the session stays pending.
		s.observeVerification("not_settled", intent.PackageID, start, 0)
		log.Debug().
			Str("session_id", intent.ID).
			Str("signature", logger.TruncateAddress(signature)).
			Msg("payment.not_yet_settled")
		return newError(apierrors.ErrCodeTransactionNotFound, "transaction not found; it may not have settled yet")
	}

	s.observeVerification("rpc_error", intent.PackageID, start, 0)
	s.record(audit.TypePaymentVerifyError, map[string]interface{}{
		"sessionId":   intent.ID,
		"package":     intent.PackageID,
		"txSignature": signature,
		"reason":      err.Error(),
	})
	log.Error().
		Err(err).
		Str("session_id", intent.ID).
		Msg("payment.ledger_error")
	return wrapError(apierrors.ErrCodeRPCError, "ledger lookup failed", err)
}

// Status is a point-in-time snapshot of a session.
type Status struct {
	SessionID string
	PackageID string
	Verified  bool
}

// Status reports the session state without touching the ledger. The
// lookup does not apply the TTL, so a just-expired session may still
// report its last state until the next sweep removes it.
func (s *Service) Status(ctx context.Context, sessionID string) (Status, error) {
	intent, err := s.sessions.Get(sessionID)
	if err != nil {
		return Status{}, newError(apierrors.ErrCodeSessionNotFound, "session not found")
	}
	return Status{
		SessionID: intent.ID,
		PackageID: intent.PackageID,
		Verified:  intent.Verified,
	}, nil
}

// RegisterRequest carries the client-supplied token metadata.
// PackageID is taken from the session, never from the client.
type RegisterRequest struct {
	SessionID string
	Mint      string
	Name      string
	Symbol    string
	Decimals  uint8
	Supply    uint64
	Creator   string
	Signature string
}

// Register records a launched token and consumes the session. The
// session must be verified and unexpired; consumption is permanent, so
// a second register for the same session fails.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (tokens.Token, error) {
	unlock := s.locks.lock(req.SessionID)
	defer unlock()

	log := logger.FromContext(ctx)

	intent, err := s.sessions.Get(req.SessionID)
	if err != nil || !intent.Verified || s.sessions.IsExpired(intent) {
		log.Warn().
			Str("session_id", req.SessionID).
			Bool("found", err == nil).
			Msg("token.register_denied")
		return tokens.Token{}, newError(apierrors.ErrCodePaymentNotVerified, "no verified payment for this session")
	}

	if !solanaaddr.IsValidAddress(req.Mint) {
		return tokens.Token{}, newError(apierrors.ErrCodeInvalidMint, "tokenMint is not a valid solana address")
	}

	creator := req.Creator
	if creator == "" {
		creator = intent.Wallet
	}

	token := s.tokens.Add(tokens.Token{
		Mint:      req.Mint,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Decimals:  req.Decimals,
		Supply:    req.Supply,
		Creator:   creator,
		Signature: req.Signature,
		PackageID: intent.PackageID,
	})

	s.record(audit.TypeTokenCreated, map[string]interface{}{
		"sessionId":   intent.ID,
		"package":     intent.PackageID,
		"tokenMint":   token.Mint,
		"tokenName":   token.Name,
		"tokenSymbol": token.Symbol,
		"creator":     token.Creator,
	})
	if s.metrics != nil {
		s.metrics.ObserveTokenRegistered(intent.PackageID)
	}

	// Single use: the session ends here.
	s.sessions.Consume(intent.ID)

	log.Info().
		Str("session_id", intent.ID).
		Str("mint", logger.TruncateAddress(token.Mint)).
		Str("package", intent.PackageID).
		Msg("token.registered")

	return token, nil
}

func (s *Service) record(entryType string, fields map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(entryType, fields)
	if s.metrics != nil {
		s.metrics.ObserveAuditEntry(entryType)
	}
}

func (s *Service) observeVerification(result, packageID string, start time.Time, amountLamports int64) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveVerification(result, packageID, time.Since(start), amountLamports)
}
