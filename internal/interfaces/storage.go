package interfaces

import (
	"context"

	"github.com/ternarybob/suadeo/internal/models"
)

// AccountStorage - interface for account persistence
type AccountStorage interface {
	SaveAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// ReplaceInsights overwrites the account's cached insight snapshot
	// wholesale. Last write wins; regeneration is idempotent.
	ReplaceInsights(ctx context.Context, accountID string, snapshot *models.AccountInsightSnapshot) error

	// SetIndustryIfEmpty sets the account industry only when no explicit
	// value is present. An existing value is never overwritten.
	SetIndustryIfEmpty(ctx context.Context, accountID string, industry string) error
}

// CallStorage - interface for call and call-analysis persistence
type CallStorage interface {
	SaveCall(ctx context.Context, call *models.Call) error
	GetCall(ctx context.Context, id string) (*models.Call, error)

	// ListCallsByAccount returns the account's calls ordered newest-first
	// by occurrence time. The aggregator depends on this ordering.
	ListCallsByAccount(ctx context.Context, accountID string) ([]*models.Call, error)
	DeleteCall(ctx context.Context, id string) error

	SaveAnalysis(ctx context.Context, analysis *models.CallAnalysis) error
	GetAnalysis(ctx context.Context, callID string) (*models.CallAnalysis, error)

	// GetAnalysesByCallIDs fetches the stored analyses for a batch of calls
	// in one round trip. Calls without a stored analysis are simply absent
	// from the result map.
	GetAnalysesByCallIDs(ctx context.Context, callIDs []string) (map[string]*models.CallAnalysis, error)
}

// StakeholderStorage - interface for stakeholder persistence
type StakeholderStorage interface {
	SaveStakeholder(ctx context.Context, stakeholder *models.Stakeholder) error
	GetStakeholder(ctx context.Context, id string) (*models.Stakeholder, error)
	ListStakeholdersByAccount(ctx context.Context, accountID string) ([]*models.Stakeholder, error)
	DeleteStakeholder(ctx context.Context, id string) error
}

// EmailStorage - interface for email log persistence
type EmailStorage interface {
	SaveEmail(ctx context.Context, email *models.EmailLog) error
	GetEmail(ctx context.Context, id string) (*models.EmailLog, error)

	// ListEmailsByAccount returns the account's email log ordered
	// newest-first by send time.
	ListEmailsByAccount(ctx context.Context, accountID string) ([]*models.EmailLog, error)

	// HasMessageRef reports whether an ingested mailbox message was
	// already stored, keyed by its mailbox reference.
	HasMessageRef(ctx context.Context, ref string) (bool, error)
	DeleteEmail(ctx context.Context, id string) error
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	AccountStorage() AccountStorage
	CallStorage() CallStorage
	StakeholderStorage() StakeholderStorage
	EmailStorage() EmailStorage
	Close() error
}

// StorageMaintainer is implemented by storage backends that support periodic
// space reclamation. The scheduler type-asserts for it.
type StorageMaintainer interface {
	RunGC() error
}
