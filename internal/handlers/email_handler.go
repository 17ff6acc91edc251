package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
)

// EmailHandler handles HTTP requests for the account email log
type EmailHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(storage interfaces.StorageManager, logger arbor.ILogger) *EmailHandler {
	return &EmailHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListEmailsHandler handles GET /api/accounts/{id}/emails
func (h *EmailHandler) ListEmailsHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	emails, err := h.storage.EmailStorage().ListEmailsByAccount(r.Context(), accountID)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to list emails")
		WriteError(w, http.StatusInternalServerError, "Failed to list emails")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"emails": emails,
		"count":  len(emails),
	})
}

// CreateEmailHandler handles POST /api/accounts/{id}/emails for manually
// logged correspondence. Mailbox ingestion writes through the same storage.
func (h *EmailHandler) CreateEmailHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")

	var email models.EmailLog
	if !DecodeJSONBody(w, r, &email) {
		return
	}
	if email.Direction != models.EmailInbound && email.Direction != models.EmailOutbound {
		WriteError(w, http.StatusBadRequest, "Email direction must be inbound or outbound")
		return
	}

	email.ID = common.NewEmailID()
	email.AccountID = accountID

	if err := h.storage.EmailStorage().SaveEmail(r.Context(), &email); err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to save email")
		WriteError(w, http.StatusInternalServerError, "Failed to save email")
		return
	}
	WriteJSON(w, http.StatusCreated, &email)
}

// DeleteEmailHandler handles DELETE /api/emails/{id}
func (h *EmailHandler) DeleteEmailHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.storage.EmailStorage().DeleteEmail(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("email_id", id).Msg("Failed to delete email")
		WriteError(w, http.StatusInternalServerError, "Failed to delete email")
		return
	}
	WriteSuccess(w, "Email deleted")
}
