package interfaces

import (
	"context"
)

// SynthesisRequest carries the bounded textual context assembled for one
// account-level insight synthesis round trip.
type SynthesisRequest struct {
	AccountName string
	Context     string // Bounded call/email/stakeholder context, already capped
}

// SynthesisResult is the narrative half of an insight snapshot, produced by
// a single structured tool call.
type SynthesisResult struct {
	BusinessContext      string   `json:"business_context"`
	PainPoints           []string `json:"pain_points"`
	DecisionProcess      string   `json:"decision_process"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	CommunicationSummary string   `json:"communication_summary"`
	KeyOpportunities     []string `json:"key_opportunities"`
	RelationshipHealth   string   `json:"relationship_health"`
	Industry             string   `json:"industry,omitempty"`
}

// CompletionService defines the AI provider operations the insight pipeline
// needs. Implementations may call Anthropic, Google, or an OpenAI-compatible
// self-hosted gateway; all map provider failures to the typed errors in the
// llm package.
type CompletionService interface {
	// SynthesizeInsights submits the account context and returns the
	// narrative fields from the provider's single expected tool call.
	// The absence of a tool call is a hard failure, never a partial result.
	SynthesizeInsights(ctx context.Context, req *SynthesisRequest) (*SynthesisResult, error)

	// StreamResearch streams free-text research output, invoking onDelta
	// for each content delta as it arrives. Returns once the provider
	// signals completion or the context is cancelled.
	StreamResearch(ctx context.Context, prompt string, onDelta func(delta string) error) error

	// HealthCheck verifies the provider is reachable and authenticated.
	HealthCheck(ctx context.Context) error

	// Provider returns the provider name for logging and status reporting.
	Provider() string

	// Close releases resources held by the provider client.
	Close() error
}
