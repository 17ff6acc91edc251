package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/interfaces"
)

// ResearchHandler relays streamed AI research output to the caller as
// server-sent events
type ResearchHandler struct {
	storage    interfaces.StorageManager
	completion interfaces.CompletionService
	logger     arbor.ILogger
}

// NewResearchHandler creates a new ResearchHandler
func NewResearchHandler(storage interfaces.StorageManager, completion interfaces.CompletionService, logger arbor.ILogger) *ResearchHandler {
	return &ResearchHandler{
		storage:    storage,
		completion: completion,
		logger:     logger,
	}
}

type researchRequest struct {
	Prompt string `json:"prompt"`
}

// StreamResearchHandler handles POST /api/accounts/{id}/research. Provider
// deltas are relayed to the client as they arrive; once streaming has begun
// an upstream failure can only terminate the stream, not change the status.
func (h *ResearchHandler) StreamResearchHandler(w http.ResponseWriter, r *http.Request) {
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

	var req researchRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		WriteError(w, http.StatusBadRequest, "Research prompt is required")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	prompt := fmt.Sprintf("Account: %s\n\n%s", account.Name, req.Prompt)
	err = h.completion.StreamResearch(r.Context(), prompt, func(delta string) error {
		// Multi-line deltas become multiple data lines of one SSE event
		for _, line := range strings.Split(delta, "\n") {
			if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("account_id", id).Msg("Research stream ended with error")
		fmt.Fprint(w, "event: error\ndata: research stream interrupted\n\n")
		flusher.Flush()
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
