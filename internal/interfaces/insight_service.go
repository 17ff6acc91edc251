package interfaces

import (
	"context"

	"github.com/ternarybob/suadeo/internal/models"
)

// InsightService regenerates account-level insight snapshots from stored
// call analyses and email history.
type InsightService interface {
	// Regenerate recomputes the account's insight snapshot from all source
	// records and persists it as a wholesale replacement. Idempotent; safe
	// to call repeatedly. Returns the snapshot that was persisted, or the
	// existing snapshot unchanged when there is nothing to analyze.
	Regenerate(ctx context.Context, accountID string) (*models.AccountInsightSnapshot, error)
}
