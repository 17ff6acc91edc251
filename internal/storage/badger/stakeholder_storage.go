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

// StakeholderStorage implements the StakeholderStorage interface for Badger
type StakeholderStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewStakeholderStorage creates a new StakeholderStorage instance
func NewStakeholderStorage(db *BadgerDB, logger arbor.ILogger) interfaces.StakeholderStorage {
	return &StakeholderStorage{
		db:     db,
		logger: logger,
	}
}

func (s *StakeholderStorage) SaveStakeholder(ctx context.Context, stakeholder *models.Stakeholder) error {
	if stakeholder.ID == "" {
		return fmt.Errorf("stakeholder ID is required")
	}
	if stakeholder.AccountID == "" {
		return fmt.Errorf("stakeholder account ID is required")
	}
	if stakeholder.Name == "" {
		return fmt.Errorf("stakeholder name is required")
	}

	now := time.Now()
	if stakeholder.CreatedAt.IsZero() {
		stakeholder.CreatedAt = now
	}
	stakeholder.UpdatedAt = now

	if err := s.db.Store().Upsert(stakeholder.ID, stakeholder); err != nil {
		return fmt.Errorf("failed to save stakeholder: %w", err)
	}
	return nil
}

func (s *StakeholderStorage) GetStakeholder(ctx context.Context, id string) (*models.Stakeholder, error) {
	var stakeholder models.Stakeholder
	if err := s.db.Store().Get(id, &stakeholder); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stakeholder: %w", err)
	}
	return &stakeholder, nil
}

func (s *StakeholderStorage) ListStakeholdersByAccount(ctx context.Context, accountID string) ([]*models.Stakeholder, error) {
	var stakeholders []models.Stakeholder
	if err := s.db.Store().Find(&stakeholders, badgerhold.Where("AccountID").Eq(accountID).Index("AccountID")); err != nil {
		return nil, fmt.Errorf("failed to list stakeholders: %w", err)
	}

	result := make([]*models.Stakeholder, len(stakeholders))
	for i := range stakeholders {
		result[i] = &stakeholders[i]
	}
	return result, nil
}

func (s *StakeholderStorage) DeleteStakeholder(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Stakeholder{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete stakeholder: %w", err)
	}
	return nil
}
