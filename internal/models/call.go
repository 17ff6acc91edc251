package models

import (
	"encoding/json"
	"time"
)

// Call represents one recorded sales call for an account.
type Call struct {
	ID        string `json:"id" badgerhold:"key"` // call_{uuid}
	AccountID string `json:"account_id" badgerhold:"index"`
	Title     string `json:"title,omitempty"`

	// Transcript is the raw call transcript text. Only a bounded excerpt
	// of it ever reaches the synthesis context.
	Transcript   string   `json:"transcript,omitempty"`
	Participants []string `json:"participants,omitempty"` // Loosely name-matched against stakeholders

	OccurredAt time.Time `json:"occurred_at" badgerhold:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CallAnalysis is one call's stored AI output: a mapping from analysis-kind
// name to an opaque JSON blob. Any kind may be absent; older calls lack newer
// kinds entirely. Written once by the analysis producer and replaced wholesale
// on re-analysis, never patched.
type CallAnalysis struct {
	CallID   string                     `json:"call_id" badgerhold:"key"`
	Sections map[string]json.RawMessage `json:"sections"`

	AnalyzedAt time.Time `json:"analyzed_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Section returns the raw blob for an analysis kind, or nil when the kind
// was never produced for this call.
func (a *CallAnalysis) Section(kind string) json.RawMessage {
	if a == nil || a.Sections == nil {
		return nil
	}
	return a.Sections[kind]
}
