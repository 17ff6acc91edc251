package models

import (
	"time"
)

// CoachingTrend summarizes coaching grades across an account's calls.
//
// AvgGrade is, despite the name, the single most recent grade rather than a
// statistical average. Downstream consumers depend on the literal behavior,
// so it is preserved as-is.
type CoachingTrend struct {
	AvgGrade         string   `json:"avgGrade,omitempty"`
	PrimaryFocusArea string   `json:"primaryFocusArea,omitempty"`
	Grades           []string `json:"grades,omitempty"` // Newest-first
}

// AccountInsightSnapshot is the single persisted account-level insight
// record: the deterministic fold of every validated per-call analysis plus
// the narrative synthesis fields. Overwritten wholesale on each
// regeneration; field names are the product's read contract.
type AccountInsightSnapshot struct {
	// Narrative fields produced by the synthesis tool call
	BusinessContext      string   `json:"businessContext,omitempty"`
	PainPoints           []string `json:"painPoints,omitempty"`
	DecisionProcess      string   `json:"decisionProcess,omitempty"`
	CompetitorsMentioned []string `json:"competitorsMentioned,omitempty"`
	CommunicationSummary string   `json:"communicationSummary,omitempty"`
	KeyOpportunities     []string `json:"keyOpportunities,omitempty"`
	RelationshipHealth   string   `json:"relationshipHealth,omitempty"`
	Industry             string   `json:"industry,omitempty"`

	// Structured fields folded from validated per-call analyses
	CriticalGapsSummary []CriticalGap       `json:"criticalGapsSummary,omitempty"` // Capped at 5, newest-first, first-seen wins
	CompetitorsSummary  []CompetitorMention `json:"competitorsSummary,omitempty"`  // Capped at 5, newest-first, first-seen wins
	ProspectPersona     *ProspectPersona    `json:"prospectPersona,omitempty"`     // Most recent non-null
	CoachingTrend       *CoachingTrend      `json:"coachingTrend,omitempty"`
	LatestHeatAnalysis  *HeatAnalysis       `json:"latestHeatAnalysis,omitempty"` // Most recent non-null

	LastAnalyzedAt time.Time `json:"lastAnalyzedAt"`
}
