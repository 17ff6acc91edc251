package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/services/mailer"
)

// Service runs the background maintenance jobs: rate-limiter pruning, stale
// snapshot refresh, and mailbox ingest.
type Service struct {
	config   *common.Config
	storage  interfaces.StorageManager
	insights interfaces.InsightService
	limiter  interfaces.RateLimiter
	mailer   *mailer.Service
	logger   arbor.ILogger
	cron     *cron.Cron
}

// NewService creates a new scheduler service
func NewService(config *common.Config, storage interfaces.StorageManager, insights interfaces.InsightService, limiter interfaces.RateLimiter, mail *mailer.Service, logger arbor.ILogger) *Service {
	return &Service{
		config:   config,
		storage:  storage,
		insights: insights,
		limiter:  limiter,
		mailer:   mail,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the maintenance jobs and starts the cron loop
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.Scheduler.PruneSchedule, s.runPrune); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.config.Scheduler.StaleSweepCron, s.runStaleSweep); err != nil {
		return err
	}
	if s.mailer.IsConfigured() {
		if _, err := s.cron.AddFunc(s.config.Scheduler.IngestSchedule, s.runIngest); err != nil {
			return err
		}
	}
	if _, ok := s.storage.(interfaces.StorageMaintainer); ok {
		if _, err := s.cron.AddFunc(s.config.Scheduler.GCSchedule, s.runGC); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info().
		Str("prune", s.config.Scheduler.PruneSchedule).
		Str("stale_sweep", s.config.Scheduler.StaleSweepCron).
		Bool("ingest", s.mailer.IsConfigured()).
		Msg("Scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

func (s *Service) runPrune() {
	s.limiter.Prune()
}

// runStaleSweep refreshes the oldest stale insight snapshots, a few per run,
// so accounts that nobody opens still stay current.
func (s *Service) runStaleSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	staleAfter := common.ParseDurationOr(s.config.Insights.StaleAfter, 168*time.Hour)
	cutoff := time.Now().Add(-staleAfter)

	accounts, err := s.storage.AccountStorage().ListAccounts(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Stale sweep failed to list accounts")
		return
	}

	refreshed := 0
	for _, account := range accounts {
		if refreshed >= s.config.Scheduler.StaleSweepLimit {
			break
		}
		// Only refresh snapshots that exist and have aged out. Accounts
		// never analyzed wait for an explicit regeneration.
		if account.Insights == nil || account.Insights.LastAnalyzedAt.After(cutoff) {
			continue
		}

		if _, err := s.insights.Regenerate(ctx, account.ID); err != nil {
			s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("Stale sweep regeneration failed")
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		s.logger.Info().Int("refreshed", refreshed).Msg("Stale snapshot sweep complete")
	}
}

func (s *Service) runGC() {
	maintainer, ok := s.storage.(interfaces.StorageMaintainer)
	if !ok {
		return
	}
	if err := maintainer.RunGC(); err != nil {
		s.logger.Warn().Err(err).Msg("Storage GC failed")
	}
}

func (s *Service) runIngest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.mailer.IngestOnce(ctx, s.config.Scheduler.IngestBatchLimit); err != nil {
		s.logger.Error().Err(err).Msg("Mailbox ingest failed")
	}
}
