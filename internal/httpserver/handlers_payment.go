package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/MintForge/server/internal/errors"
	"github.com/MintForge/server/pkg/responders"
)

type initiatePaymentRequest struct {
	PackageID  string `json:"packageId"`
	UserWallet string `json:"userWallet"`
}

// initiatePayment creates a pending payment session for a package.
func (h *handlers) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "invalid JSON body")
		return
	}
	if req.PackageID == "" {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "packageId is required")
		return
	}
	if req.UserWallet == "" {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "userWallet is required")
		return
	}

	init, err := h.payments.Initiate(r.Context(), req.PackageID, req.UserWallet)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responders.JSON(w, http.StatusOK, map[string]any{
		"sessionId":      init.SessionID,
		"platformWallet": init.PlatformWallet,
		"amountLamports": init.Package.Lamports,
		"package": map[string]any{
			"id":       init.Package.ID,
			"label":    init.Package.Label,
			"lamports": init.Package.Lamports,
		},
	})
}

type verifyPaymentRequest struct {
	SessionID   string `json:"sessionId"`
	TxSignature string `json:"txSignature"`
}

// verifyPayment checks the session's payment against the on-chain ledger.
func (h *handlers) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "sessionId is required")
		return
	}
	if req.TxSignature == "" {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "txSignature is required")
		return
	}

	verification, err := h.payments.Verify(r.Context(), req.SessionID, req.TxSignature)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responders.JSON(w, http.StatusOK, map[string]any{
		"verified":        true,
		"sessionId":       verification.SessionID,
		"package":         verification.PackageID,
		"txSignature":     verification.Signature,
		"alreadyVerified": verification.AlreadyVerified,
	})
}

// paymentStatus reports the current state of a session without touching
// the ledger.
func (h *handlers) paymentStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.payments.Status(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responders.JSON(w, http.StatusOK, map[string]any{
		"sessionId": status.SessionID,
		"packageId": status.PackageID,
		"verified":  status.Verified,
	})
}
