package badger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	manager, err := NewManager(common.GetLogger(), &common.BadgerConfig{
		Path: t.TempDir() + "/suadeo-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func TestAccountStorage_RoundTrip(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	accounts := manager.AccountStorage()

	account := &models.Account{ID: common.NewAccountID(), Name: "Acme", Industry: ""}
	require.NoError(t, accounts.SaveAccount(ctx, account))

	got, err := accounts.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := accounts.GetAccount(ctx, "acct_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountStorage_ReplaceInsightsIsWholesale(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	accounts := manager.AccountStorage()

	account := &models.Account{ID: common.NewAccountID(), Name: "Acme"}
	require.NoError(t, accounts.SaveAccount(ctx, account))

	first := &models.AccountInsightSnapshot{
		BusinessContext:     "first run",
		CriticalGapsSummary: []models.CriticalGap{{Description: "no champion", Structured: false}},
		LastAnalyzedAt:      time.Now(),
	}
	require.NoError(t, accounts.ReplaceInsights(ctx, account.ID, first))

	second := &models.AccountInsightSnapshot{BusinessContext: "second run", LastAnalyzedAt: time.Now()}
	require.NoError(t, accounts.ReplaceInsights(ctx, account.ID, second))

	got, err := accounts.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Insights)
	assert.Equal(t, "second run", got.Insights.BusinessContext)
	// Full replacement, not a merge
	assert.Empty(t, got.Insights.CriticalGapsSummary)
}

func TestAccountStorage_SetIndustryIfEmpty(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	accounts := manager.AccountStorage()

	account := &models.Account{ID: common.NewAccountID(), Name: "Acme"}
	require.NoError(t, accounts.SaveAccount(ctx, account))

	require.NoError(t, accounts.SetIndustryIfEmpty(ctx, account.ID, "Logistics"))
	got, err := accounts.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Logistics", got.Industry)

	// An existing value is never overwritten
	require.NoError(t, accounts.SetIndustryIfEmpty(ctx, account.ID, "Healthcare"))
	got, err = accounts.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Logistics", got.Industry)
}

func TestCallStorage_ListIsNewestFirst(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	calls := manager.CallStorage()

	accountID := common.NewAccountID()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	// Saved out of order on purpose
	for i, offset := range []int{2, 0, 1} {
		require.NoError(t, calls.SaveCall(ctx, &models.Call{
			ID:         common.NewCallID(),
			AccountID:  accountID,
			Title:      "call",
			Transcript: "transcript",
			OccurredAt: base.Add(time.Duration(offset) * 24 * time.Hour),
		}), "save %d", i)
	}

	listed, err := calls.ListCallsByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.True(t, listed[0].OccurredAt.After(listed[1].OccurredAt))
	assert.True(t, listed[1].OccurredAt.After(listed[2].OccurredAt))
}

func TestCallStorage_AnalysisBatchFetch(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	calls := manager.CallStorage()

	withAnalysis := common.NewCallID()
	withoutAnalysis := common.NewCallID()

	require.NoError(t, calls.SaveAnalysis(ctx, &models.CallAnalysis{
		CallID: withAnalysis,
		Sections: map[string]json.RawMessage{
			models.AnalysisKindBehavior: json.RawMessage(`{"talk_ratio":0.4,"question_count":6}`),
		},
	}))

	result, err := calls.GetAnalysesByCallIDs(ctx, []string{withAnalysis, withoutAnalysis})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Contains(t, result, withAnalysis)
	assert.NotNil(t, result[withAnalysis].Section(models.AnalysisKindBehavior))
	assert.Nil(t, result[withAnalysis].Section(models.AnalysisKindDealHeat))
}

func TestCallStorage_DeleteRemovesAnalysis(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	calls := manager.CallStorage()

	callID := common.NewCallID()
	require.NoError(t, calls.SaveCall(ctx, &models.Call{ID: callID, AccountID: common.NewAccountID()}))
	require.NoError(t, calls.SaveAnalysis(ctx, &models.CallAnalysis{
		CallID:   callID,
		Sections: map[string]json.RawMessage{},
	}))

	require.NoError(t, calls.DeleteCall(ctx, callID))

	analysis, err := calls.GetAnalysis(ctx, callID)
	require.NoError(t, err)
	assert.Nil(t, analysis)
}

func TestEmailStorage_NewestFirstAndMessageRef(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	emails := manager.EmailStorage()

	accountID := common.NewAccountID()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, emails.SaveEmail(ctx, &models.EmailLog{
		ID: common.NewEmailID(), AccountID: accountID, Direction: models.EmailOutbound,
		Subject: "older", SentAt: base,
	}))
	require.NoError(t, emails.SaveEmail(ctx, &models.EmailLog{
		ID: common.NewEmailID(), AccountID: accountID, Direction: models.EmailInbound,
		Subject: "newer", MessageRef: "imap-42", SentAt: base.Add(time.Hour),
	}))

	listed, err := emails.ListEmailsByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "newer", listed[0].Subject)

	seen, err := emails.HasMessageRef(ctx, "imap-42")
	require.NoError(t, err)
	assert.True(t, seen)

	unseen, err := emails.HasMessageRef(ctx, "imap-43")
	require.NoError(t, err)
	assert.False(t, unseen)
}

func TestStakeholderStorage_ListByAccount(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	stakeholders := manager.StakeholderStorage()

	accountID := common.NewAccountID()
	require.NoError(t, stakeholders.SaveStakeholder(ctx, &models.Stakeholder{
		ID: common.NewStakeholderID(), AccountID: accountID, Name: "Dana", Role: "CTO", Influence: "champion",
	}))
	require.NoError(t, stakeholders.SaveStakeholder(ctx, &models.Stakeholder{
		ID: common.NewStakeholderID(), AccountID: "acct_other", Name: "Unrelated",
	}))

	listed, err := stakeholders.ListStakeholdersByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Dana", listed[0].Name)
}
