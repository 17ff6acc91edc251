package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
	"github.com/ternarybob/suadeo/internal/services/analysis"
)

// ErrAccountNotFound indicates the regeneration target does not exist. The
// account record is the one mandatory dependency of a regeneration; every
// other fetch degrades to an empty section instead of failing the run.
var ErrAccountNotFound = errors.New("account not found")

// Service recomputes account-level insight snapshots. Each regeneration is a
// full recompute from all source records: per-call analyses are validated,
// deterministically folded, merged with one narrative synthesis round trip
// and persisted as a wholesale snapshot replacement.
type Service struct {
	storage    interfaces.StorageManager
	completion interfaces.CompletionService
	validator  *analysis.SchemaValidator
	builder    *contextBuilder
	logger     arbor.ILogger
}

const summaryCap = 5

func NewService(storage interfaces.StorageManager, completion interfaces.CompletionService, cfg *common.InsightsConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage:    storage,
		completion: completion,
		validator:  analysis.NewSchemaValidator(logger),
		builder:    newContextBuilder(cfg.MaxCalls, cfg.MaxEmails, cfg.MaxExcerptLength),
		logger:     logger,
	}
}

// Regenerate recomputes and persists the account's insight snapshot.
// Idempotent; safe to call repeatedly. Concurrent regenerations for the same
// account are not serialized here: regeneration is user triggered and
// idempotent, so last write wins on the snapshot is acceptable.
func (s *Service) Regenerate(ctx context.Context, accountID string) (*models.AccountInsightSnapshot, error) {
	account, err := s.storage.AccountStorage().GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}

	startTime := time.Now()

	// Fan out the independent fetches. Each goroutine writes only its own
	// pair of locals, joined after Wait; no locking is needed.
	var (
		calls           []*models.Call
		callsErr        error
		stakeholders    []*models.Stakeholder
		stakeholdersErr error
		emails          []*models.EmailLog
		emailsErr       error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		calls, callsErr = s.storage.CallStorage().ListCallsByAccount(ctx, accountID)
	}()
	go func() {
		defer wg.Done()
		stakeholders, stakeholdersErr = s.storage.StakeholderStorage().ListStakeholdersByAccount(ctx, accountID)
	}()
	go func() {
		defer wg.Done()
		emails, emailsErr = s.storage.EmailStorage().ListEmailsByAccount(ctx, accountID)
	}()
	wg.Wait()

	// Partial-failure join: a failed fetch degrades its section to empty
	// rather than aborting the regeneration.
	if callsErr != nil {
		s.logger.Warn().Err(callsErr).Str("account_id", accountID).Msg("Call fetch failed, continuing without call context")
		calls = nil
	}
	if stakeholdersErr != nil {
		s.logger.Warn().Err(stakeholdersErr).Str("account_id", accountID).Msg("Stakeholder fetch failed, continuing without stakeholder context")
		stakeholders = nil
	}
	if emailsErr != nil {
		s.logger.Warn().Err(emailsErr).Str("account_id", accountID).Msg("Email fetch failed, continuing without email context")
		emails = nil
	}

	// Nothing to analyze: return the stored snapshot unchanged and skip the
	// AI round trip entirely.
	if len(calls) == 0 && len(emails) == 0 {
		s.logger.Debug().Str("account_id", accountID).Msg("No call or email history, skipping regeneration")
		return account.Insights, nil
	}

	// Dependent fetch: the stored analyses for all calls in one round trip
	var analyses map[string]*models.CallAnalysis
	if len(calls) > 0 {
		callIDs := make([]string, len(calls))
		for i, call := range calls {
			callIDs[i] = call.ID
		}
		analyses, err = s.storage.CallStorage().GetAnalysesByCallIDs(ctx, callIDs)
		if err != nil {
			s.logger.Warn().Err(err).Str("account_id", accountID).Msg("Analysis fetch failed, continuing without structured analyses")
			analyses = nil
		}
	}

	snapshot := s.foldStructured(calls, analyses)

	synthesis, err := s.completion.SynthesizeInsights(ctx, &interfaces.SynthesisRequest{
		AccountName: account.Name,
		Context:     s.builder.Build(calls, stakeholders, emails),
	})
	if err != nil {
		// The stored snapshot stays the last known good value
		s.logger.Warn().Err(err).Str("account_id", accountID).Msg("Insight synthesis failed, keeping existing snapshot")
		return nil, err
	}

	snapshot.BusinessContext = synthesis.BusinessContext
	snapshot.PainPoints = synthesis.PainPoints
	snapshot.DecisionProcess = synthesis.DecisionProcess
	snapshot.CompetitorsMentioned = synthesis.CompetitorsMentioned
	snapshot.CommunicationSummary = synthesis.CommunicationSummary
	snapshot.KeyOpportunities = synthesis.KeyOpportunities
	snapshot.RelationshipHealth = synthesis.RelationshipHealth
	snapshot.Industry = synthesis.Industry
	snapshot.LastAnalyzedAt = time.Now().UTC()

	if err := s.storage.AccountStorage().ReplaceInsights(ctx, accountID, snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist insight snapshot: %w", err)
	}

	// Side effect: adopt the inferred industry only when none is set
	if account.Industry == "" && synthesis.Industry != "" {
		if err := s.storage.AccountStorage().SetIndustryIfEmpty(ctx, accountID, synthesis.Industry); err != nil {
			s.logger.Warn().Err(err).Str("account_id", accountID).Msg("Failed to set inferred industry")
		}
	}

	s.logger.Info().
		Str("account_id", accountID).
		Int("calls", len(calls)).
		Int("emails", len(emails)).
		Int("gaps", len(snapshot.CriticalGapsSummary)).
		Int("competitors", len(snapshot.CompetitorsSummary)).
		Dur("duration", time.Since(startTime)).
		Msg("Insight snapshot regenerated")

	return snapshot, nil
}

// foldStructured deterministically folds the validated per-call analyses
// into the structured half of the snapshot. Calls must be ordered
// newest-first; every recency rule below depends on that precondition.
// Degraded validations contribute whatever fields they recovered and are
// never a reason to abort.
func (s *Service) foldStructured(calls []*models.Call, analyses map[string]*models.CallAnalysis) *models.AccountInsightSnapshot {
	type gapKey struct {
		category    string
		description string
	}

	seenGaps := make(map[gapKey]bool)
	var gaps []models.CriticalGap
	seenCompetitors := make(map[string]bool)
	var competitors []models.CompetitorMention
	var grades []string
	var focusArea string
	var persona *models.ProspectPersona
	var heat *models.HeatAnalysis

	for _, call := range calls {
		record, ok := analyses[call.ID]
		if !ok || record == nil {
			continue
		}
		validated := s.validator.ValidateAll(record)

		if strategy := validated[models.AnalysisKindStrategy].Strategy(); strategy != nil {
			for _, gap := range strategy.CriticalGaps {
				key := gapKey{category: gap.Category, description: gap.Description}
				if seenGaps[key] {
					continue
				}
				seenGaps[key] = true
				gaps = append([]models.CriticalGap{gap}, gaps...)
			}
		}

		if intel := validated[models.AnalysisKindCompetitiveIntel].CompetitiveIntel(); intel != nil {
			for _, mention := range intel.Competitors {
				key := strings.ToLower(mention.Name)
				if seenCompetitors[key] {
					continue
				}
				seenCompetitors[key] = true
				competitors = append(competitors, mention)
			}
		}

		if coaching := validated[models.AnalysisKindCoaching].Coaching(); coaching != nil {
			if coaching.OverallGrade != "" {
				grades = append(grades, coaching.OverallGrade)
			}
			if focusArea == "" && coaching.PrimaryFocusArea != "" {
				focusArea = coaching.PrimaryFocusArea
			}
		}

		if persona == nil {
			persona = validated[models.AnalysisKindPsychology].Persona()
		}
		if heat == nil {
			heat = validated[models.AnalysisKindDealHeat].Heat()
		}
	}

	if len(gaps) > summaryCap {
		gaps = gaps[:summaryCap]
	}
	if len(competitors) > summaryCap {
		competitors = competitors[:summaryCap]
	}

	snapshot := &models.AccountInsightSnapshot{
		CriticalGapsSummary: gaps,
		CompetitorsSummary:  competitors,
		ProspectPersona:     persona,
		LatestHeatAnalysis:  heat,
	}
	if len(grades) > 0 {
		snapshot.CoachingTrend = &models.CoachingTrend{
			// AvgGrade carries the most recent grade; see the model comment
			AvgGrade:         grades[0],
			PrimaryFocusArea: focusArea,
			Grades:           grades,
		}
	}
	return snapshot
}
