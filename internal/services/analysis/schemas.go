package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/suadeo/internal/models"
)

// schemaRegistry returns the ordered schema version chain for every analysis
// kind, newest-first. Each decode function checks its version's required
// fields via pointer presence, normalizes to the current in-memory shape and
// applies range constraints from the model validate tags. Unknown fields are
// ignored at every version; a record is only pushed down the chain by a
// required-field violation.
func schemaRegistry() map[string][]schemaVersion {
	return map[string][]schemaVersion{
		models.AnalysisKindBehavior: {
			{name: "behavior/v2", decode: decodeBehaviorV2},
			{name: "behavior/v1", decode: decodeBehaviorV1},
		},
		models.AnalysisKindStrategy: {
			{name: "strategy/v2", decode: decodeStrategyV2},
			{name: "strategy/v1", decode: decodeStrategyV1},
		},
		models.AnalysisKindMetadata: {
			{name: "metadata/v2", decode: decodeMetadataV2},
			{name: "metadata/v1", decode: decodeMetadataV1},
		},
		models.AnalysisKindPsychology: {
			{name: "psychology/v2", decode: decodePsychologyV2},
			{name: "psychology/v1", decode: decodePsychologyV1},
		},
		models.AnalysisKindCoaching: {
			{name: "coaching/v2", decode: decodeCoachingV2},
			{name: "coaching/v1", decode: decodeCoachingV1},
		},
		models.AnalysisKindDealHeat: {
			{name: "deal_heat/v2", decode: decodeDealHeatV2},
			{name: "deal_heat/v1", decode: decodeDealHeatV1},
		},
		models.AnalysisKindCompetitiveIntel: {
			{name: "competitive_intel/v1", decode: decodeCompetitiveIntelV1},
		},
	}
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}

// criticalGapUnion accepts both the legacy bare-string gap shape and the
// structured object shape, normalizing to the structured form at read time.
type criticalGapUnion models.CriticalGap

func (g *criticalGapUnion) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*g = criticalGapUnion{Description: text, Structured: false}
		return nil
	}

	var structured struct {
		Category          string `json:"category"`
		Description       string `json:"description"`
		Impact            string `json:"impact"`
		SuggestedQuestion string `json:"suggested_question"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*g = criticalGapUnion{
		Category:          structured.Category,
		Description:       structured.Description,
		Impact:            structured.Impact,
		SuggestedQuestion: structured.SuggestedQuestion,
		Structured:        true,
	}
	return nil
}

func normalizeGaps(unions []criticalGapUnion) []models.CriticalGap {
	if len(unions) == 0 {
		return nil
	}
	gaps := make([]models.CriticalGap, 0, len(unions))
	for _, u := range unions {
		if strings.TrimSpace(u.Description) == "" {
			continue
		}
		gaps = append(gaps, models.CriticalGap(u))
	}
	if len(gaps) == 0 {
		return nil
	}
	return gaps
}

// -- behavior --------------------------------------------------------------

type behaviorV2 struct {
	TalkRatio           *float64 `json:"talk_ratio"`
	QuestionCount       *int     `json:"question_count"`
	FillerWordCount     int      `json:"filler_word_count"`
	TalkSpeedWPM        float64  `json:"talk_speed_wpm"`
	LongestMonologueSec int      `json:"longest_monologue_sec"`
	Sentiment           string   `json:"sentiment"`
}

func decodeBehaviorV2(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec behaviorV2
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.TalkRatio == nil {
		return nil, missingField("talk_ratio")
	}
	if rec.QuestionCount == nil {
		return nil, missingField("question_count")
	}

	out := &models.BehaviorAnalysis{
		TalkRatio:           *rec.TalkRatio,
		QuestionCount:       *rec.QuestionCount,
		FillerWordCount:     rec.FillerWordCount,
		TalkSpeedWPM:        rec.TalkSpeedWPM,
		LongestMonologueSec: rec.LongestMonologueSec,
		Sentiment:           rec.Sentiment,
	}
	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeBehaviorV1 accepts records from before question counting existed.
// question_count stays absent rather than being defaulted to look measured.
func decodeBehaviorV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec behaviorV2
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.TalkRatio == nil {
		return nil, missingField("talk_ratio")
	}

	out := &models.BehaviorAnalysis{
		TalkRatio:           *rec.TalkRatio,
		FillerWordCount:     rec.FillerWordCount,
		TalkSpeedWPM:        rec.TalkSpeedWPM,
		LongestMonologueSec: rec.LongestMonologueSec,
		Sentiment:           rec.Sentiment,
	}
	if rec.QuestionCount != nil {
		out.QuestionCount = *rec.QuestionCount
	}
	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

// -- strategy --------------------------------------------------------------

type strategyRecord struct {
	DealStage    *string            `json:"deal_stage"`
	CriticalGaps []criticalGapUnion `json:"critical_gaps"`
	NextSteps    []string           `json:"next_steps"`
}

func decodeStrategyV2(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec strategyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.DealStage == nil {
		return nil, missingField("deal_stage")
	}

	return &models.StrategyAnalysis{
		DealStage:    *rec.DealStage,
		CriticalGaps: normalizeGaps(rec.CriticalGaps),
		NextSteps:    rec.NextSteps,
	}, nil
}

// decodeStrategyV1 accepts records from before deal staging, where gaps were
// commonly stored as bare strings.
func decodeStrategyV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec strategyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	out := &models.StrategyAnalysis{
		CriticalGaps: normalizeGaps(rec.CriticalGaps),
		NextSteps:    rec.NextSteps,
	}
	if rec.DealStage != nil {
		out.DealStage = *rec.DealStage
	}
	return out, nil
}

// -- metadata --------------------------------------------------------------

type metadataV2 struct {
	DurationMinutes *int     `json:"duration_minutes"`
	CallType        string   `json:"call_type"`
	Participants    []string `json:"participants"`
}

// metadataV1 predates the field rename from duration to duration_minutes.
type metadataV1 struct {
	Duration     *int     `json:"duration"`
	CallType     string   `json:"call_type"`
	Participants []string `json:"participants"`
}

func decodeMetadataV2(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec metadataV2
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.DurationMinutes == nil {
		return nil, missingField("duration_minutes")
	}

	out := &models.CallMetadata{
		DurationMinutes: *rec.DurationMinutes,
		CallType:        rec.CallType,
		Participants:    rec.Participants,
	}
	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeMetadataV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec metadataV1
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Duration == nil {
		return nil, missingField("duration")
	}

	out := &models.CallMetadata{
		DurationMinutes: *rec.Duration,
		CallType:        rec.CallType,
		Participants:    rec.Participants,
	}
	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

// -- psychology ------------------------------------------------------------

type psychologyRecord struct {
	ProfileType        *string  `json:"profile_type"`
	PersonalityType    *string  `json:"personality_type"` // Pre-rename field name
	CommunicationStyle string   `json:"communication_style"`
	Motivators         []string `json:"motivators"`
	RiskTolerance      string   `json:"risk_tolerance"`
}

func decodePsychologyV2(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec psychologyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.ProfileType == nil {
		return nil, missingField("profile_type")
	}

	return &models.ProspectPersona{
		ProfileType:        *rec.ProfileType,
		CommunicationStyle: rec.CommunicationStyle,
		Motivators:         rec.Motivators,
		RiskTolerance:      rec.RiskTolerance,
	}, nil
}

func decodePsychologyV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec psychologyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.PersonalityType == nil {
		return nil, missingField("personality_type")
	}

	return &models.ProspectPersona{
		ProfileType:        *rec.PersonalityType,
		CommunicationStyle: rec.CommunicationStyle,
		Motivators:         rec.Motivators,
		RiskTolerance:      rec.RiskTolerance,
	}, nil
}

// -- coaching --------------------------------------------------------------

type coachingRecord struct {
	OverallGrade     *string  `json:"overall_grade"`
	PrimaryFocusArea *string  `json:"primary_focus_area"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
}

func decodeCoachingV2(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec coachingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.OverallGrade == nil {
		return nil, missingField("overall_grade")
	}
	if rec.PrimaryFocusArea == nil {
		return nil, missingField("primary_focus_area")
	}

	return &models.CoachingAnalysis{
		OverallGrade:     *rec.OverallGrade,
		PrimaryFocusArea: *rec.PrimaryFocusArea,
		Strengths:        rec.Strengths,
		Improvements:     rec.Improvements,
	}, nil
}

// decodeCoachingV1 accepts records from before focus areas were graded.
func decodeCoachingV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec coachingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.OverallGrade == nil {
		return nil, missingField("overall_grade")
	}

	out := &models.CoachingAnalysis{
		OverallGrade: *rec.OverallGrade,
		Strengths:    rec.Strengths,
		Improvements: rec.Improvements,
	}
	if rec.PrimaryFocusArea != nil {
		out.PrimaryFocusArea = *rec.PrimaryFocusArea
	}
	return out, nil
}

// -- deal heat -------------------------------------------------------------

type dealHeatRecord struct {
	Temperature *string `json:"temperature"`
	Score       *int    `json:"score"`
	Trend       string  `json:"trend"`
	Rationale   string  `json:"rationale"`
}

func decodeDealHeatV2(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec dealHeatRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Temperature == nil {
		return nil, missingField("temperature")
	}
	if rec.Score == nil {
		return nil, missingField("score")
	}

	out := &models.HeatAnalysis{
		Temperature: *rec.Temperature,
		Score:       *rec.Score,
		Trend:       rec.Trend,
		Rationale:   rec.Rationale,
	}
	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeDealHeatV1 accepts records from before numeric scoring.
func decodeDealHeatV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec dealHeatRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Temperature == nil {
		return nil, missingField("temperature")
	}

	out := &models.HeatAnalysis{
		Temperature: *rec.Temperature,
		Trend:       rec.Trend,
		Rationale:   rec.Rationale,
	}
	if rec.Score != nil {
		out.Score = *rec.Score
	}
	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return out, nil
}

// -- competitive intel -----------------------------------------------------

type competitiveIntelRecord struct {
	Competitors []struct {
		Name        string `json:"name"`
		Status      string `json:"status"`
		Positioning string `json:"positioning"`
	} `json:"competitors"`
	WinThemes []string `json:"win_themes"`
}

func decodeCompetitiveIntelV1(v *validator.Validate, raw json.RawMessage) (interface{}, error) {
	var rec competitiveIntelRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	out := &models.CompetitiveIntel{WinThemes: rec.WinThemes}
	for _, c := range rec.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		out.Competitors = append(out.Competitors, models.CompetitorMention{
			Name:        c.Name,
			Status:      c.Status,
			Positioning: c.Positioning,
		})
	}
	return out, nil
}
