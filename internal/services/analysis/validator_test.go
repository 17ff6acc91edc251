package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/models"
)

func newTestValidator(t *testing.T) *SchemaValidator {
	t.Helper()
	return NewSchemaValidator(common.GetLogger())
}

func TestValidate_AbsentRecordIsNotYetAnalyzed(t *testing.T) {
	v := newTestValidator(t)

	for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
		result := v.Validate(models.AnalysisKindBehavior, raw)
		assert.Equal(t, StatusDegraded, result.Status)
		assert.Equal(t, ReasonNotYetAnalyzed, result.Reason)
		assert.Nil(t, result.Value)
	}
}

func TestValidate_CurrentSchemaIsOK(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindBehavior, json.RawMessage(
		`{"talk_ratio":0.42,"question_count":7,"sentiment":"positive"}`))

	require.True(t, result.OK())
	behavior := result.Behavior()
	require.NotNil(t, behavior)
	assert.Equal(t, 0.42, behavior.TalkRatio)
	assert.Equal(t, 7, behavior.QuestionCount)
	assert.Equal(t, "positive", behavior.Sentiment)
}

func TestValidate_SchemaFallbackRoundTrip(t *testing.T) {
	v := newTestValidator(t)

	// Valid under v1 (no question_count) but missing a field required in v2:
	// degraded with the v1-valid fields populated, never a hard failure.
	result := v.Validate(models.AnalysisKindBehavior, json.RawMessage(
		`{"talk_ratio":0.8,"sentiment":"neutral"}`))

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Equal(t, ReasonSchemaDrift, result.Reason)
	behavior := result.Behavior()
	require.NotNil(t, behavior)
	assert.Equal(t, 0.8, behavior.TalkRatio)
	assert.Equal(t, 0, behavior.QuestionCount)
}

func TestValidate_UnknownFieldsAreIgnored(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindBehavior, json.RawMessage(
		`{"talk_ratio":0.5,"question_count":3,"some_future_field":{"nested":true}}`))

	assert.True(t, result.OK())
}

func TestValidate_RangeViolationFallsThrough(t *testing.T) {
	v := newTestValidator(t)

	// talk_ratio outside [0,1] fails every version
	result := v.Validate(models.AnalysisKindBehavior, json.RawMessage(
		`{"talk_ratio":1.7,"question_count":3}`))

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Equal(t, ReasonMalformed, result.Reason)
	assert.Nil(t, result.Value)
}

func TestValidate_MalformedBlob(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindStrategy, json.RawMessage(`"just a string"`))

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Equal(t, ReasonMalformed, result.Reason)
	assert.Nil(t, result.Value)
}

func TestValidate_UnknownKind(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate("astrology", json.RawMessage(`{}`))

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Equal(t, ReasonMalformed, result.Reason)
}

func TestValidate_StrategyGapUnionNormalization(t *testing.T) {
	v := newTestValidator(t)

	// Legacy record: no deal_stage, gaps stored as bare strings
	result := v.Validate(models.AnalysisKindStrategy, json.RawMessage(
		`{"critical_gaps":["no champion identified","budget unknown"]}`))

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Equal(t, ReasonSchemaDrift, result.Reason)
	strategy := result.Strategy()
	require.NotNil(t, strategy)
	require.Len(t, strategy.CriticalGaps, 2)
	assert.Equal(t, "no champion identified", strategy.CriticalGaps[0].Description)
	assert.False(t, strategy.CriticalGaps[0].Structured)
	assert.Empty(t, strategy.CriticalGaps[0].Category)
}

func TestValidate_StrategyMixedGapShapes(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindStrategy, json.RawMessage(`{
		"deal_stage": "evaluation",
		"critical_gaps": [
			{"category":"budget","description":"no budget holder engaged","impact":"High","suggested_question":"Who signs off on spend?"},
			"timeline unclear"
		]
	}`))

	require.True(t, result.OK())
	strategy := result.Strategy()
	require.NotNil(t, strategy)
	assert.Equal(t, "evaluation", strategy.DealStage)
	require.Len(t, strategy.CriticalGaps, 2)

	assert.True(t, strategy.CriticalGaps[0].Structured)
	assert.Equal(t, "budget", strategy.CriticalGaps[0].Category)
	assert.Equal(t, "Who signs off on spend?", strategy.CriticalGaps[0].SuggestedQuestion)

	assert.False(t, strategy.CriticalGaps[1].Structured)
	assert.Equal(t, "timeline unclear", strategy.CriticalGaps[1].Description)
}

func TestValidate_MetadataFieldRenameFallback(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindMetadata, json.RawMessage(
		`{"duration":45,"call_type":"discovery"}`))

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Equal(t, ReasonSchemaDrift, result.Reason)
	metadata := result.Metadata()
	require.NotNil(t, metadata)
	assert.Equal(t, 45, metadata.DurationMinutes)
	assert.Equal(t, "discovery", metadata.CallType)
}

func TestValidate_PsychologyFieldRenameFallback(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindPsychology, json.RawMessage(
		`{"personality_type":"analytical","motivators":["cost savings"]}`))

	assert.Equal(t, StatusDegraded, result.Status)
	persona := result.Persona()
	require.NotNil(t, persona)
	assert.Equal(t, "analytical", persona.ProfileType)
	assert.Equal(t, []string{"cost savings"}, persona.Motivators)
}

func TestValidate_DealHeatScoreBounds(t *testing.T) {
	v := newTestValidator(t)

	ok := v.Validate(models.AnalysisKindDealHeat, json.RawMessage(
		`{"temperature":"hot","score":85,"trend":"rising"}`))
	require.True(t, ok.OK())
	assert.Equal(t, 85, ok.Heat().Score)

	outOfRange := v.Validate(models.AnalysisKindDealHeat, json.RawMessage(
		`{"temperature":"hot","score":150}`))
	assert.Equal(t, ReasonMalformed, outOfRange.Reason)
}

func TestValidate_CompetitiveIntelDropsUnnamedMentions(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate(models.AnalysisKindCompetitiveIntel, json.RawMessage(`{
		"competitors": [
			{"name":"Acme CRM","status":"incumbent"},
			{"name":"  "},
			{"name":"RivalSoft","positioning":"cheaper"}
		],
		"win_themes": ["faster onboarding"]
	}`))

	require.True(t, result.OK())
	intel := result.CompetitiveIntel()
	require.NotNil(t, intel)
	require.Len(t, intel.Competitors, 2)
	assert.Equal(t, "Acme CRM", intel.Competitors[0].Name)
	assert.Equal(t, "RivalSoft", intel.Competitors[1].Name)
}

func TestValidate_NeverMutatesInput(t *testing.T) {
	v := newTestValidator(t)

	raw := json.RawMessage(`{"talk_ratio":0.5,"question_count":2}`)
	original := string(raw)

	first := v.Validate(models.AnalysisKindBehavior, raw)
	second := v.Validate(models.AnalysisKindBehavior, raw)

	assert.Equal(t, original, string(raw))
	require.True(t, first.OK())
	require.True(t, second.OK())

	// Outputs are fresh values, not shared
	first.Behavior().QuestionCount = 99
	assert.Equal(t, 2, second.Behavior().QuestionCount)
}

func TestValidateAll_CoversEveryKind(t *testing.T) {
	v := newTestValidator(t)

	record := &models.CallAnalysis{
		CallID: "call_1",
		Sections: map[string]json.RawMessage{
			models.AnalysisKindBehavior: json.RawMessage(`{"talk_ratio":0.3,"question_count":5}`),
			models.AnalysisKindCoaching: json.RawMessage(`{"overall_grade":"B+","primary_focus_area":"discovery"}`),
		},
	}

	results := v.ValidateAll(record)

	require.Len(t, results, len(models.AnalysisKinds))
	assert.True(t, results[models.AnalysisKindBehavior].OK())
	assert.True(t, results[models.AnalysisKindCoaching].OK())
	assert.Equal(t, ReasonNotYetAnalyzed, results[models.AnalysisKindStrategy].Reason)
	assert.Equal(t, ReasonNotYetAnalyzed, results[models.AnalysisKindDealHeat].Reason)
}
