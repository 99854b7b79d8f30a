package httpserver

import (
	"net/http"
	"strconv"

	apierrors "github.com/MintForge/server/internal/errors"
	"github.com/MintForge/server/internal/payment"
	"github.com/MintForge/server/pkg/responders"
)

const (
	defaultRecentTokens = 20
	maxRecentTokens     = 50
)

type registerTokenRequest struct {
	SessionID   string `json:"sessionId"`
	TokenMint   string `json:"tokenMint"`
	TokenName   string `json:"tokenName"`
	TokenSymbol string `json:"tokenSymbol"`
	Decimals    *uint8 `json:"decimals"`
	Supply      uint64 `json:"supply"`
	UserWallet  string `json:"userWallet"`
	TxSignature string `json:"txSignature"`
}

// registerToken records a launched token against a verified session.
// Metadata is optional; absent fields get placeholder defaults.
func (h *handlers) registerToken(w http.ResponseWriter, r *http.Request) {
	var req registerTokenRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "sessionId is required")
		return
	}
	if req.TokenMint == "" {
		apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "tokenMint is required")
		return
	}

	name := req.TokenName
	if name == "" {
		name = "Unknown"
	}
	symbol := req.TokenSymbol
	if symbol == "" {
		symbol = "???"
	}
	decimals := uint8(9)
	if req.Decimals != nil {
		decimals = *req.Decimals
	}

	token, err := h.payments.Register(r.Context(), payment.RegisterRequest{
		SessionID: req.SessionID,
		Mint:      req.TokenMint,
		Name:      name,
		Symbol:    symbol,
		Decimals:  decimals,
		Supply:    req.Supply,
		Creator:   req.UserWallet,
		Signature: req.TxSignature,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responders.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
	})
}

// recentTokens lists the most recently launched tokens, newest first.
func (h *handlers) recentTokens(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentTokens
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxRecentTokens {
		limit = maxRecentTokens
	}

	list := h.tokens.Recent(limit)
	responders.JSON(w, http.StatusOK, map[string]any{
		"tokens": list,
		"count":  len(list),
	})
}
