package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
)

// StakeholderHandler handles HTTP requests for account stakeholders
type StakeholderHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewStakeholderHandler creates a new StakeholderHandler
func NewStakeholderHandler(storage interfaces.StorageManager, logger arbor.ILogger) *StakeholderHandler {
	return &StakeholderHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListStakeholdersHandler handles GET /api/accounts/{id}/stakeholders
func (h *StakeholderHandler) ListStakeholdersHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	stakeholders, err := h.storage.StakeholderStorage().ListStakeholdersByAccount(r.Context(), accountID)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to list stakeholders")
		WriteError(w, http.StatusInternalServerError, "Failed to list stakeholders")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stakeholders": stakeholders,
		"count":        len(stakeholders),
	})
}

// CreateStakeholderHandler handles POST /api/accounts/{id}/stakeholders
func (h *StakeholderHandler) CreateStakeholderHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")

	var stakeholder models.Stakeholder
	if !DecodeJSONBody(w, r, &stakeholder) {
		return
	}
	if stakeholder.Name == "" {
		WriteError(w, http.StatusBadRequest, "Stakeholder name is required")
		return
	}

	stakeholder.ID = common.NewStakeholderID()
	stakeholder.AccountID = accountID

	if err := h.storage.StakeholderStorage().SaveStakeholder(r.Context(), &stakeholder); err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to save stakeholder")
		WriteError(w, http.StatusInternalServerError, "Failed to save stakeholder")
		return
	}
	WriteJSON(w, http.StatusCreated, &stakeholder)
}

// UpdateStakeholderHandler handles PUT /api/stakeholders/{id}
func (h *StakeholderHandler) UpdateStakeholderHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.storage.StakeholderStorage().GetStakeholder(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("stakeholder_id", id).Msg("Failed to get stakeholder")
		WriteError(w, http.StatusInternalServerError, "Failed to get stakeholder")
		return
	}
	if existing == nil {
		WriteError(w, http.StatusNotFound, "Stakeholder not found")
		return
	}

	var update models.Stakeholder
	if !DecodeJSONBody(w, r, &update) {
		return
	}
	update.ID = existing.ID
	update.AccountID = existing.AccountID
	update.CreatedAt = existing.CreatedAt

	if err := h.storage.StakeholderStorage().SaveStakeholder(r.Context(), &update); err != nil {
		h.logger.Error().Err(err).Str("stakeholder_id", id).Msg("Failed to update stakeholder")
		WriteError(w, http.StatusInternalServerError, "Failed to update stakeholder")
		return
	}
	WriteJSON(w, http.StatusOK, &update)
}

// DeleteStakeholderHandler handles DELETE /api/stakeholders/{id}
func (h *StakeholderHandler) DeleteStakeholderHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.storage.StakeholderStorage().DeleteStakeholder(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("stakeholder_id", id).Msg("Failed to delete stakeholder")
		WriteError(w, http.StatusInternalServerError, "Failed to delete stakeholder")
		return
	}
	WriteSuccess(w, "Stakeholder deleted")
}
