package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
)

// StatusHandler reports service, storage and provider health
type StatusHandler struct {
	storage    interfaces.StorageManager
	completion interfaces.CompletionService
	logger     arbor.ILogger
	startedAt  time.Time
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(storage interfaces.StorageManager, completion interfaces.CompletionService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage:    storage,
		completion: completion,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "suadeo",
		"version": common.GetVersion(),
	})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// StatusHandler handles GET /api/status. The provider check has a short
// deadline so a slow upstream cannot hang the status page.
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	providerStatus := "healthy"
	if err := h.completion.HealthCheck(ctx); err != nil {
		h.logger.Warn().Err(err).Str("provider", h.completion.Provider()).Msg("Provider health check failed")
		providerStatus = "unreachable"
	}

	storageStatus := "healthy"
	if _, err := h.storage.AccountStorage().ListAccounts(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Storage health check failed")
		storageStatus = "unhealthy"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"service": "suadeo",
		"version": common.GetFullVersion(),
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"storage": storageStatus,
		"provider": map[string]string{
			"name":   h.completion.Provider(),
			"status": providerStatus,
		},
	})
}
