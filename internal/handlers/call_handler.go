package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
)

// CallHandler handles HTTP requests for calls and their stored analyses
type CallHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewCallHandler creates a new CallHandler
func NewCallHandler(storage interfaces.StorageManager, logger arbor.ILogger) *CallHandler {
	return &CallHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListCallsHandler handles GET /api/accounts/{id}/calls
func (h *CallHandler) ListCallsHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	calls, err := h.storage.CallStorage().ListCallsByAccount(r.Context(), accountID)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to list calls")
		WriteError(w, http.StatusInternalServerError, "Failed to list calls")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"calls": calls,
		"count": len(calls),
	})
}

// CreateCallHandler handles POST /api/accounts/{id}/calls
func (h *CallHandler) CreateCallHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")

	account, err := h.storage.AccountStorage().GetAccount(r.Context(), accountID)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to get account")
		WriteError(w, http.StatusInternalServerError, "Failed to get account")
		return
	}
	if account == nil {
		WriteError(w, http.StatusNotFound, "Account not found")
		return
	}

	var call models.Call
	if !DecodeJSONBody(w, r, &call) {
		return
	}
	if call.Transcript == "" {
		WriteError(w, http.StatusBadRequest, "Call transcript is required")
		return
	}

	call.ID = common.NewCallID()
	call.AccountID = accountID

	if err := h.storage.CallStorage().SaveCall(r.Context(), &call); err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to save call")
		WriteError(w, http.StatusInternalServerError, "Failed to save call")
		return
	}

	h.logger.Info().Str("call_id", call.ID).Str("account_id", accountID).Msg("Call recorded")
	WriteJSON(w, http.StatusCreated, &call)
}

// GetCallHandler handles GET /api/calls/{id}
func (h *CallHandler) GetCallHandler(w http.ResponseWriter, r *http.Request) {
	call, ok := h.fetchCall(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, call)
}

// DeleteCallHandler handles DELETE /api/calls/{id}
func (h *CallHandler) DeleteCallHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.storage.CallStorage().DeleteCall(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("call_id", id).Msg("Failed to delete call")
		WriteError(w, http.StatusInternalServerError, "Failed to delete call")
		return
	}
	WriteSuccess(w, "Call deleted")
}

// SaveAnalysisHandler handles PUT /api/calls/{id}/analysis. Section blobs are
// stored as submitted; validation happens at aggregation time so one bad
// section never blocks ingestion.
func (h *CallHandler) SaveAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	call, ok := h.fetchCall(w, r)
	if !ok {
		return
	}

	var analysis models.CallAnalysis
	if !DecodeJSONBody(w, r, &analysis) {
		return
	}
	analysis.CallID = call.ID

	if err := h.storage.CallStorage().SaveAnalysis(r.Context(), &analysis); err != nil {
		h.logger.Error().Err(err).Str("call_id", call.ID).Msg("Failed to save analysis")
		WriteError(w, http.StatusInternalServerError, "Failed to save analysis")
		return
	}

	h.logger.Info().Str("call_id", call.ID).Int("sections", len(analysis.Sections)).Msg("Call analysis stored")
	WriteJSON(w, http.StatusOK, &analysis)
}

// GetAnalysisHandler handles GET /api/calls/{id}/analysis
func (h *CallHandler) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	call, ok := h.fetchCall(w, r)
	if !ok {
		return
	}

	analysis, err := h.storage.CallStorage().GetAnalysis(r.Context(), call.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("call_id", call.ID).Msg("Failed to get analysis")
		WriteError(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}
	if analysis == nil {
		WriteError(w, http.StatusNotFound, "Call has not been analyzed")
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}

func (h *CallHandler) fetchCall(w http.ResponseWriter, r *http.Request) (*models.Call, bool) {
	id := r.PathValue("id")
	call, err := h.storage.CallStorage().GetCall(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("call_id", id).Msg("Failed to get call")
		WriteError(w, http.StatusInternalServerError, "Failed to get call")
		return nil, false
	}
	if call == nil {
		WriteError(w, http.StatusNotFound, "Call not found")
		return nil, false
	}
	return call, true
}
