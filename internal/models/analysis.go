package models

// Analysis kind names as stored in CallAnalysis.Sections. These match the
// keys written by the per-call analysis producer.
const (
	AnalysisKindBehavior         = "behavior"
	AnalysisKindStrategy         = "strategy"
	AnalysisKindMetadata         = "metadata"
	AnalysisKindPsychology       = "psychology"
	AnalysisKindCoaching         = "coaching"
	AnalysisKindDealHeat         = "deal_heat"
	AnalysisKindCompetitiveIntel = "competitive_intel"
)

// AnalysisKinds lists every known kind in a stable order.
var AnalysisKinds = []string{
	AnalysisKindBehavior,
	AnalysisKindStrategy,
	AnalysisKindMetadata,
	AnalysisKindPsychology,
	AnalysisKindCoaching,
	AnalysisKindDealHeat,
	AnalysisKindCompetitiveIntel,
}

// BehaviorAnalysis captures the rep's conversational mechanics on one call.
type BehaviorAnalysis struct {
	TalkRatio           float64 `json:"talk_ratio" validate:"gte=0,lte=1"`
	QuestionCount       int     `json:"question_count" validate:"gte=0"`
	FillerWordCount     int     `json:"filler_word_count,omitempty"`
	TalkSpeedWPM        float64 `json:"talk_speed_wpm,omitempty"`
	LongestMonologueSec int     `json:"longest_monologue_sec,omitempty"`
	Sentiment           string  `json:"sentiment,omitempty"`
}

// CriticalGap is a missing piece of deal-qualifying information surfaced by
// the strategy analysis. Older records stored gaps as bare strings; those are
// normalized into this shape with Structured=false and only Description set.
// Deduplication key is (Category, Description).
type CriticalGap struct {
	Category          string `json:"category,omitempty"`
	Description       string `json:"description"`
	Impact            string `json:"impact,omitempty"` // High, Medium, Low
	SuggestedQuestion string `json:"suggested_question,omitempty"`
	Structured        bool   `json:"structured"`
}

// StrategyAnalysis captures deal-strategy findings for one call.
type StrategyAnalysis struct {
	DealStage    string        `json:"deal_stage,omitempty"`
	CriticalGaps []CriticalGap `json:"critical_gaps,omitempty"`
	NextSteps    []string      `json:"next_steps,omitempty"`
}

// CallMetadata carries structural facts about the call itself.
type CallMetadata struct {
	DurationMinutes int      `json:"duration_minutes" validate:"gte=0"`
	CallType        string   `json:"call_type,omitempty"` // discovery, demo, negotiation, check_in
	Participants    []string `json:"participants,omitempty"`
}

// ProspectPersona is the psychology analysis output: how the buyer thinks.
type ProspectPersona struct {
	ProfileType        string   `json:"profile_type"` // analytical, driver, amiable, expressive
	CommunicationStyle string   `json:"communication_style,omitempty"`
	Motivators         []string `json:"motivators,omitempty"`
	RiskTolerance      string   `json:"risk_tolerance,omitempty"`
}

// CoachingAnalysis grades the rep's performance on one call.
type CoachingAnalysis struct {
	OverallGrade     string   `json:"overall_grade"` // A+ .. F
	PrimaryFocusArea string   `json:"primary_focus_area,omitempty"`
	Strengths        []string `json:"strengths,omitempty"`
	Improvements     []string `json:"improvements,omitempty"`
}

// HeatAnalysis estimates how likely the deal is to close based on one call.
type HeatAnalysis struct {
	Temperature string `json:"temperature"` // hot, warm, cool, cold
	Score       int    `json:"score,omitempty" validate:"gte=0,lte=100"`
	Trend       string `json:"trend,omitempty"` // rising, steady, falling
	Rationale   string `json:"rationale,omitempty"`
}

// CompetitorMention is one competitor surfaced on a call. Deduplication key
// is the case-insensitive name; the first occurrence in recency order wins.
type CompetitorMention struct {
	Name        string `json:"name"`
	Status      string `json:"status,omitempty"`      // incumbent, evaluating, displaced
	Positioning string `json:"positioning,omitempty"` // How they were framed on the call
}

// CompetitiveIntel captures competitor landscape findings for one call.
type CompetitiveIntel struct {
	Competitors []CompetitorMention `json:"competitors,omitempty"`
	WinThemes   []string            `json:"win_themes,omitempty"`
}
