package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AccountStorage implements the AccountStorage interface for Badger
type AccountStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAccountStorage creates a new AccountStorage instance
func NewAccountStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AccountStorage {
	return &AccountStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AccountStorage) SaveAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		return fmt.Errorf("account ID is required")
	}
	if account.Name == "" {
		return fmt.Errorf("account name is required")
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	if err := s.db.Store().Upsert(account.ID, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *AccountStorage) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Store().Get(id, &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *AccountStorage) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	var accounts []models.Account
	if err := s.db.Store().Find(&accounts, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	result := make([]*models.Account, len(accounts))
	for i := range accounts {
		result[i] = &accounts[i]
	}
	return result, nil
}

func (s *AccountStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Account{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// ReplaceInsights overwrites the account's cached insight snapshot wholesale.
// Concurrent regenerations are tolerated with last-write-wins semantics.
func (s *AccountStorage) ReplaceInsights(ctx context.Context, accountID string, snapshot *models.AccountInsightSnapshot) error {
	var account models.Account
	if err := s.db.Store().Get(accountID, &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("account not found: %s", accountID)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	account.Insights = snapshot
	account.UpdatedAt = time.Now()

	if err := s.db.Store().Update(accountID, &account); err != nil {
		return fmt.Errorf("failed to replace account insights: %w", err)
	}

	s.logger.Debug().Str("account_id", accountID).Msg("Account insight snapshot replaced")
	return nil
}

// SetIndustryIfEmpty sets the account industry only when no explicit value
// is present.
func (s *AccountStorage) SetIndustryIfEmpty(ctx context.Context, accountID string, industry string) error {
	if industry == "" {
		return nil
	}

	var account models.Account
	if err := s.db.Store().Get(accountID, &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("account not found: %s", accountID)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if account.Industry != "" {
		return nil
	}

	account.Industry = industry
	account.UpdatedAt = time.Now()

	if err := s.db.Store().Update(accountID, &account); err != nil {
		return fmt.Errorf("failed to set account industry: %w", err)
	}

	s.logger.Debug().
		Str("account_id", accountID).
		Str("industry", industry).
		Msg("Adopted inferred account industry")
	return nil
}
