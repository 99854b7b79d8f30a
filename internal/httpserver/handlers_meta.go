package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/MintForge/server/internal/errors"
	"github.com/MintForge/server/pkg/responders"
)

const (
	defaultAuditEntries = 50
	maxAuditEntries     = 200
)

// health returns service health status including ledger connectivity.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	now := time.Now()
	uptime := now.Sub(serverStartTime)

	ledgerHealthy := h.ledger != nil && h.ledger.Healthy(ctx) == nil

	status := "ok"
	statusCode := http.StatusOK
	if !ledgerHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]any{
		"status":        status,
		"uptime":        uptime.String(),
		"timestamp":     now.UTC(),
		"ledgerHealthy": ledgerHealthy,
		"network":       h.cfg.Solana.Network,
	}
	if h.cfg.Server.RoutePrefix != "" {
		response["routePrefix"] = h.cfg.Server.RoutePrefix
	}

	responders.JSON(w, statusCode, response)
}

// listPackages returns the launch package price table, cheapest first.
func (h *handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{
		"packages": h.packages.List(),
	})
}

// platformWallet returns the wallet that receives launch payments.
func (h *handlers) platformWallet(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{
		"platformWallet": h.cfg.Solana.PlatformWallet,
	})
}

// auditLogs returns recent audit entries, newest first.
func (h *handlers) auditLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditEntries
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierrors.WriteSimpleError(w, apierrors.ErrCodeMissingField, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxAuditEntries {
		limit = maxAuditEntries
	}

	entries := h.audit.Recent(limit)
	responders.JSON(w, http.StatusOK, map[string]any{
		"logs":  entries,
		"count": len(entries),
	})
}
