package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
	"github.com/ternarybob/suadeo/internal/services/auth"
	"github.com/ternarybob/suadeo/internal/services/insights"
	"github.com/ternarybob/suadeo/internal/services/llm"
)

// RegenerateResponse is the wire shape of a regeneration attempt. Error text
// stays generic; upstream provider details go to the log only.
type RegenerateResponse struct {
	Success       bool                           `json:"success"`
	Insights      *models.AccountInsightSnapshot `json:"insights,omitempty"`
	Error         string                         `json:"error,omitempty"`
	IsRateLimited bool                           `json:"isRateLimited,omitempty"`
	RetryAfter    int                            `json:"retryAfter,omitempty"` // Seconds
}

// InsightHandler handles HTTP requests for account insight snapshots
type InsightHandler struct {
	service interfaces.InsightService
	storage interfaces.StorageManager
	limiter interfaces.RateLimiter
	logger  arbor.ILogger
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(service interfaces.InsightService, storage interfaces.StorageManager, limiter interfaces.RateLimiter, logger arbor.ILogger) *InsightHandler {
	return &InsightHandler{
		service: service,
		storage: storage,
		limiter: limiter,
		logger:  logger,
	}
}

// GetInsightsHandler handles GET /api/accounts/{id}/insights
func (h *InsightHandler) GetInsightsHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	account, err := h.storage.AccountStorage().GetAccount(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", id).Msg("Failed to get account")
		WriteError(w, http.StatusInternalServerError, "Failed to get account")
		return
	}
	if account == nil {
		WriteError(w, http.StatusNotFound, "Account not found")
		return
	}
	if account.Insights == nil {
		WriteError(w, http.StatusNotFound, "Account has no insight snapshot yet")
		return
	}
	WriteJSON(w, http.StatusOK, account.Insights)
}

// RegenerateInsightsHandler handles POST /api/accounts/{id}/insights/regenerate.
// The caller identity is rate limited before any account work begins.
func (h *InsightHandler) RegenerateInsightsHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")

	identity := auth.IdentityFromContext(r.Context())
	if identity == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	decision := h.limiter.Check(identity)
	if !decision.Allowed {
		retryAfter := int(decision.RetryAfter.Round(time.Second).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		h.logger.Warn().
			Str("identity", identity).
			Str("account_id", accountID).
			Int("retry_after_seconds", retryAfter).
			Msg("Regeneration rate limited")
		WriteJSON(w, http.StatusTooManyRequests, RegenerateResponse{
			Success:       false,
			Error:         "Too many regeneration requests",
			IsRateLimited: true,
			RetryAfter:    retryAfter,
		})
		return
	}

	started := time.Now()
	snapshot, err := h.service.Regenerate(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, insights.ErrAccountNotFound) {
			WriteJSON(w, http.StatusNotFound, RegenerateResponse{
				Success: false,
				Error:   "Account not found",
			})
			return
		}

		status := http.StatusBadGateway
		message := "Insight generation failed, please try again"
		isRateLimited := false
		switch {
		case errors.Is(err, llm.ErrRateLimited):
			status = http.StatusTooManyRequests
			message = "Analysis provider is busy, please try again shortly"
			isRateLimited = true
		case errors.Is(err, llm.ErrQuotaExceeded):
			message = "Analysis provider quota exhausted"
		case errors.Is(err, llm.ErrTimeout):
			status = http.StatusGatewayTimeout
			message = "Insight generation timed out, please try again"
		}

		h.logger.Error().
			Err(err).
			Str("identity", identity).
			Str("account_id", accountID).
			Dur("elapsed", time.Since(started)).
			Msg("Insight regeneration failed")
		WriteJSON(w, status, RegenerateResponse{
			Success:       false,
			Error:         message,
			IsRateLimited: isRateLimited,
		})
		return
	}

	h.logger.Info().
		Str("identity", identity).
		Str("account_id", accountID).
		Dur("elapsed", time.Since(started)).
		Msg("Insight regeneration complete")
	WriteJSON(w, http.StatusOK, RegenerateResponse{
		Success:  true,
		Insights: snapshot,
	})
}
