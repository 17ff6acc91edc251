package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
	"github.com/ternarybob/suadeo/internal/services/auth"
	"github.com/ternarybob/suadeo/internal/services/insights"
	"github.com/ternarybob/suadeo/internal/services/llm"
)

type fakeInsightService struct {
	snapshot *models.AccountInsightSnapshot
	err      error
	calls    int
}

func (f *fakeInsightService) Regenerate(ctx context.Context, accountID string) (*models.AccountInsightSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type fakeLimiter struct {
	decision interfaces.RateDecision
	checks   int
}

func (f *fakeLimiter) Check(identity string) interfaces.RateDecision {
	f.checks++
	return f.decision
}

func (f *fakeLimiter) Prune() {}

type fakeAccountStorage struct {
	account *models.Account
}

func (f *fakeAccountStorage) SaveAccount(ctx context.Context, account *models.Account) error {
	return nil
}

func (f *fakeAccountStorage) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return f.account, nil
}

func (f *fakeAccountStorage) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return nil, nil
}

func (f *fakeAccountStorage) DeleteAccount(ctx context.Context, id string) error { return nil }

func (f *fakeAccountStorage) ReplaceInsights(ctx context.Context, accountID string, snapshot *models.AccountInsightSnapshot) error {
	return nil
}

func (f *fakeAccountStorage) SetIndustryIfEmpty(ctx context.Context, accountID string, industry string) error {
	return nil
}

type fakeStorageManager struct {
	accounts *fakeAccountStorage
}

func (f *fakeStorageManager) AccountStorage() interfaces.AccountStorage         { return f.accounts }
func (f *fakeStorageManager) CallStorage() interfaces.CallStorage               { return nil }
func (f *fakeStorageManager) StakeholderStorage() interfaces.StakeholderStorage { return nil }
func (f *fakeStorageManager) EmailStorage() interfaces.EmailStorage             { return nil }
func (f *fakeStorageManager) Close() error                                      { return nil }

func newInsightFixture(service *fakeInsightService, limiter *fakeLimiter, account *models.Account) *InsightHandler {
	return NewInsightHandler(
		service,
		&fakeStorageManager{accounts: &fakeAccountStorage{account: account}},
		limiter,
		common.GetLogger(),
	)
}

func regenerateRequest(identity string) *http.Request {
	r := httptest.NewRequest("POST", "/api/accounts/acct_1/insights/regenerate", nil)
	r.SetPathValue("id", "acct_1")
	if identity != "" {
		r = r.WithContext(auth.WithIdentity(r.Context(), identity))
	}
	return r
}

func decodeRegenerate(t *testing.T, rec *httptest.ResponseRecorder) RegenerateResponse {
	t.Helper()
	var resp RegenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegenerate_RequiresIdentity(t *testing.T) {
	service := &fakeInsightService{}
	limiter := &fakeLimiter{decision: interfaces.RateDecision{Allowed: true}}
	handler := newInsightFixture(service, limiter, nil)

	rec := httptest.NewRecorder()
	handler.RegenerateInsightsHandler(rec, regenerateRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// No limiter check and no regeneration before auth
	assert.Zero(t, limiter.checks)
	assert.Zero(t, service.calls)
}

func TestRegenerate_RateLimitedBeforeAnyWork(t *testing.T) {
	service := &fakeInsightService{}
	limiter := &fakeLimiter{decision: interfaces.RateDecision{Allowed: false, RetryAfter: 42 * time.Second}}
	handler := newInsightFixture(service, limiter, nil)

	rec := httptest.NewRecorder()
	handler.RegenerateInsightsHandler(rec, regenerateRequest("alice"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeRegenerate(t, rec)
	assert.False(t, resp.Success)
	assert.True(t, resp.IsRateLimited)
	assert.Equal(t, 42, resp.RetryAfter)
	assert.Zero(t, service.calls)
}

func TestRegenerate_Success(t *testing.T) {
	snapshot := &models.AccountInsightSnapshot{BusinessContext: "logistics SaaS"}
	service := &fakeInsightService{snapshot: snapshot}
	limiter := &fakeLimiter{decision: interfaces.RateDecision{Allowed: true}}
	handler := newInsightFixture(service, limiter, nil)

	rec := httptest.NewRecorder()
	handler.RegenerateInsightsHandler(rec, regenerateRequest("alice"))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeRegenerate(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Insights)
	assert.Equal(t, "logistics SaaS", resp.Insights.BusinessContext)
}

func TestRegenerate_UnknownAccountIs404(t *testing.T) {
	service := &fakeInsightService{err: insights.ErrAccountNotFound}
	limiter := &fakeLimiter{decision: interfaces.RateDecision{Allowed: true}}
	handler := newInsightFixture(service, limiter, nil)

	rec := httptest.NewRecorder()
	handler.RegenerateInsightsHandler(rec, regenerateRequest("alice"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeRegenerate(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Account not found", resp.Error)
}

func TestRegenerate_UpstreamErrorsStayGeneric(t *testing.T) {
	upstream := &llm.UpstreamError{StatusCode: 500, Body: "internal provider stack trace"}
	service := &fakeInsightService{err: upstream}
	limiter := &fakeLimiter{decision: interfaces.RateDecision{Allowed: true}}
	handler := newInsightFixture(service, limiter, nil)

	rec := httptest.NewRecorder()
	handler.RegenerateInsightsHandler(rec, regenerateRequest("alice"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeRegenerate(t, rec)
	assert.False(t, resp.Success)
	// Provider internals never reach the response body
	assert.NotContains(t, rec.Body.String(), "stack trace")
	assert.NotEmpty(t, resp.Error)
}

func TestRegenerate_ProviderRateLimitIsFlagged(t *testing.T) {
	service := &fakeInsightService{err: fmt.Errorf("synthesis failed: %w", llm.ErrRateLimited)}
	limiter := &fakeLimiter{decision: interfaces.RateDecision{Allowed: true}}
	handler := newInsightFixture(service, limiter, nil)

	rec := httptest.NewRecorder()
	handler.RegenerateInsightsHandler(rec, regenerateRequest("alice"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeRegenerate(t, rec)
	assert.True(t, resp.IsRateLimited)
}

func TestGetInsights_NotFoundWithoutSnapshot(t *testing.T) {
	account := &models.Account{ID: "acct_1", Name: "Acme"}
	handler := newInsightFixture(&fakeInsightService{}, &fakeLimiter{}, account)

	r := httptest.NewRequest("GET", "/api/accounts/acct_1/insights", nil)
	r.SetPathValue("id", "acct_1")
	rec := httptest.NewRecorder()
	handler.GetInsightsHandler(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInsights_ReturnsStoredSnapshot(t *testing.T) {
	account := &models.Account{
		ID:       "acct_1",
		Name:     "Acme",
		Insights: &models.AccountInsightSnapshot{BusinessContext: "stored"},
	}
	handler := newInsightFixture(&fakeInsightService{}, &fakeLimiter{}, account)

	r := httptest.NewRequest("GET", "/api/accounts/acct_1/insights", nil)
	r.SetPathValue("id", "acct_1")
	rec := httptest.NewRecorder()
	handler.GetInsightsHandler(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.AccountInsightSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, "stored", snapshot.BusinessContext)
}
