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

// CallStorage implements the CallStorage interface for Badger
type CallStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCallStorage creates a new CallStorage instance
func NewCallStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CallStorage {
	return &CallStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CallStorage) SaveCall(ctx context.Context, call *models.Call) error {
	if call.ID == "" {
		return fmt.Errorf("call ID is required")
	}
	if call.AccountID == "" {
		return fmt.Errorf("call account ID is required")
	}

	now := time.Now()
	if call.CreatedAt.IsZero() {
		call.CreatedAt = now
	}
	if call.OccurredAt.IsZero() {
		call.OccurredAt = now
	}
	call.UpdatedAt = now

	if err := s.db.Store().Upsert(call.ID, call); err != nil {
		return fmt.Errorf("failed to save call: %w", err)
	}
	return nil
}

func (s *CallStorage) GetCall(ctx context.Context, id string) (*models.Call, error) {
	var call models.Call
	if err := s.db.Store().Get(id, &call); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

// ListCallsByAccount returns the account's calls ordered newest-first by
// occurrence time. The insight aggregator's recency rules depend on this
// ordering, so it is enforced here rather than left to index iteration order.
func (s *CallStorage) ListCallsByAccount(ctx context.Context, accountID string) ([]*models.Call, error) {
	var calls []models.Call
	if err := s.db.Store().Find(&calls, badgerhold.Where("AccountID").Eq(accountID).Index("AccountID")); err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}

	sort.Slice(calls, func(i, j int) bool {
		return calls[i].OccurredAt.After(calls[j].OccurredAt)
	})

	result := make([]*models.Call, len(calls))
	for i := range calls {
		result[i] = &calls[i]
	}
	return result, nil
}

func (s *CallStorage) DeleteCall(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Call{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete call: %w", err)
	}

	// The stored analysis shares the call's lifetime
	if err := s.db.Store().Delete(id, &models.CallAnalysis{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete call analysis: %w", err)
	}
	return nil
}

func (s *CallStorage) SaveAnalysis(ctx context.Context, analysis *models.CallAnalysis) error {
	if analysis.CallID == "" {
		return fmt.Errorf("analysis call ID is required")
	}

	now := time.Now()
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = now
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = now
	}
	analysis.UpdatedAt = now

	if err := s.db.Store().Upsert(analysis.CallID, analysis); err != nil {
		return fmt.Errorf("failed to save call analysis: %w", err)
	}
	return nil
}

func (s *CallStorage) GetAnalysis(ctx context.Context, callID string) (*models.CallAnalysis, error) {
	var analysis models.CallAnalysis
	if err := s.db.Store().Get(callID, &analysis); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call analysis: %w", err)
	}
	return &analysis, nil
}

// GetAnalysesByCallIDs fetches the stored analyses for a batch of calls in
// one round trip. Calls without a stored analysis are simply absent from the
// result map.
func (s *CallStorage) GetAnalysesByCallIDs(ctx context.Context, callIDs []string) (map[string]*models.CallAnalysis, error) {
	if len(callIDs) == 0 {
		return map[string]*models.CallAnalysis{}, nil
	}

	keys := make([]interface{}, len(callIDs))
	for i, id := range callIDs {
		keys[i] = id
	}

	var analyses []models.CallAnalysis
	if err := s.db.Store().Find(&analyses, badgerhold.Where(badgerhold.Key).In(keys...)); err != nil {
		return nil, fmt.Errorf("failed to batch fetch call analyses: %w", err)
	}

	result := make(map[string]*models.CallAnalysis, len(analyses))
	for i := range analyses {
		result[analyses[i].CallID] = &analyses[i]
	}
	return result, nil
}
