package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db          *BadgerDB
	account     interfaces.AccountStorage
	call        interfaces.CallStorage
	stakeholder interfaces.StakeholderStorage
	email       interfaces.EmailStorage
	logger      arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:          db,
		account:     NewAccountStorage(db, logger),
		call:        NewCallStorage(db, logger),
		stakeholder: NewStakeholderStorage(db, logger),
		email:       NewEmailStorage(db, logger),
		logger:      logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// AccountStorage returns the Account storage interface
func (m *Manager) AccountStorage() interfaces.AccountStorage {
	return m.account
}

// CallStorage returns the Call storage interface
func (m *Manager) CallStorage() interfaces.CallStorage {
	return m.call
}

// StakeholderStorage returns the Stakeholder storage interface
func (m *Manager) StakeholderStorage() interfaces.StakeholderStorage {
	return m.stakeholder
}

// EmailStorage returns the Email storage interface
func (m *Manager) EmailStorage() interfaces.EmailStorage {
	return m.email
}

// RunGC reclaims value log space. Exposed for the scheduler's maintenance job.
func (m *Manager) RunGC() error {
	return m.db.RunGC()
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
