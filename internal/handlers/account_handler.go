package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
)

// AccountHandler handles HTTP requests for account management
type AccountHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(storage interfaces.StorageManager, logger arbor.ILogger) *AccountHandler {
	return &AccountHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListAccountsHandler handles GET /api/accounts
func (h *AccountHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.storage.AccountStorage().ListAccounts(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list accounts")
		WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CreateAccountHandler handles POST /api/accounts
func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if !DecodeJSONBody(w, r, &account) {
		return
	}
	if account.Name == "" {
		WriteError(w, http.StatusBadRequest, "Account name is required")
		return
	}

	account.ID = common.NewAccountID()
	account.Insights = nil // Snapshots are produced by regeneration only

	if err := h.storage.AccountStorage().SaveAccount(r.Context(), &account); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create account")
		WriteError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.logger.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	WriteJSON(w, http.StatusCreated, &account)
}

// GetAccountHandler handles GET /api/accounts/{id}
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, ok := h.fetchAccount(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// UpdateAccountHandler handles PUT /api/accounts/{id}
func (h *AccountHandler) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.fetchAccount(w, r)
	if !ok {
		return
	}

	var update models.Account
	if !DecodeJSONBody(w, r, &update) {
		return
	}

	// Identity, snapshot and timestamps are server owned
	update.ID = existing.ID
	update.Insights = existing.Insights
	update.CreatedAt = existing.CreatedAt

	if err := h.storage.AccountStorage().SaveAccount(r.Context(), &update); err != nil {
		h.logger.Error().Err(err).Str("account_id", existing.ID).Msg("Failed to update account")
		WriteError(w, http.StatusInternalServerError, "Failed to update account")
		return
	}
	WriteJSON(w, http.StatusOK, &update)
}

// DeleteAccountHandler handles DELETE /api/accounts/{id}
func (h *AccountHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.storage.AccountStorage().DeleteAccount(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("account_id", id).Msg("Failed to delete account")
		WriteError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	WriteSuccess(w, "Account deleted")
}

func (h *AccountHandler) fetchAccount(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	id := r.PathValue("id")
	account, err := h.storage.AccountStorage().GetAccount(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", id).Msg("Failed to get account")
		WriteError(w, http.StatusInternalServerError, "Failed to get account")
		return nil, false
	}
	if account == nil {
		WriteError(w, http.StatusNotFound, "Account not found")
		return nil, false
	}
	return account, true
}
