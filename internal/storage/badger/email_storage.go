package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// EmailStorage implements the EmailStorage interface for Badger
type EmailStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewEmailStorage creates a new EmailStorage instance
func NewEmailStorage(db *BadgerDB, logger arbor.ILogger) interfaces.EmailStorage {
	return &EmailStorage{
		db:     db,
		logger: logger,
	}
}

func (s *EmailStorage) SaveEmail(ctx context.Context, email *models.EmailLog) error {
	if email.ID == "" {
		return fmt.Errorf("email ID is required")
	}
	if email.AccountID == "" {
		return fmt.Errorf("email account ID is required")
	}

	now := time.Now()
	if email.CreatedAt.IsZero() {
		email.CreatedAt = now
	}
	if email.SentAt.IsZero() {
		email.SentAt = now
	}

	if err := s.db.Store().Upsert(email.ID, email); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}

func (s *EmailStorage) GetEmail(ctx context.Context, id string) (*models.EmailLog, error) {
	var email models.EmailLog
	if err := s.db.Store().Get(id, &email); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return &email, nil
}

// ListEmailsByAccount returns the account's email log ordered newest-first
// by send time.
func (s *EmailStorage) ListEmailsByAccount(ctx context.Context, accountID string) ([]*models.EmailLog, error) {
	var emails []models.EmailLog
	if err := s.db.Store().Find(&emails, badgerhold.Where("AccountID").Eq(accountID).Index("AccountID")); err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}

	sort.Slice(emails, func(i, j int) bool {
		return emails[i].SentAt.After(emails[j].SentAt)
	})

	result := make([]*models.EmailLog, len(emails))
	for i := range emails {
		result[i] = &emails[i]
	}
	return result, nil
}

// HasMessageRef reports whether an ingested mailbox message was already
// stored, keyed by its mailbox reference.
func (s *EmailStorage) HasMessageRef(ctx context.Context, ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}

	var matches []models.EmailLog
	if err := s.db.Store().Find(&matches, badgerhold.Where("MessageRef").Eq(ref).Index("MessageRef").Limit(1)); err != nil {
		return false, fmt.Errorf("failed to check message reference: %w", err)
	}
	return len(matches) > 0, nil
}

func (s *EmailStorage) DeleteEmail(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.EmailLog{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete email: %w", err)
	}
	return nil
}
