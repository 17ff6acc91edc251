package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/suadeo/internal/interfaces"
)

// synthesisToolName is the single function every provider is forced to call
// when synthesizing account insights. Structured tool output is the only
// accepted response shape; prose answers are rejected.
const synthesisToolName = "record_account_insights"

const synthesisToolDescription = "Record the synthesized account-level sales insights. " +
	"Every field must be grounded in the supplied call and email context; do not invent facts."

const synthesisSystemPrompt = "You are a sales intelligence analyst. You are given recent call " +
	"analyses, email excerpts and stakeholder notes for a single account. Synthesize them into " +
	"concise account-level insights a seller can act on. Be specific and grounded; when the " +
	"context does not support a field, leave it empty rather than speculating."

// synthesisToolProperties is the JSON schema property map for the synthesis
// tool, shared by the Claude and OpenAI-compatible wire formats.
func synthesisToolProperties() map[string]interface{} {
	stringProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	stringArrayProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": desc,
		}
	}

	return map[string]interface{}{
		"business_context":      stringProp("What the prospect's business does and the situation driving this deal"),
		"pain_points":           stringArrayProp("Distinct pain points the prospect has voiced"),
		"decision_process":      stringProp("How the account makes buying decisions, including known approvers"),
		"competitors_mentioned": stringArrayProp("Competitor names raised anywhere in the context"),
		"communication_summary": stringProp("How the prospect communicates and how the relationship has evolved"),
		"key_opportunities":     stringArrayProp("Concrete openings the seller should pursue next"),
		"relationship_health":   stringProp("One-line assessment of relationship health"),
		"industry":              stringProp("The account's industry, only if evident from the context"),
	}
}

// buildSynthesisMessages renders the synthesis request as a single user
// prompt. The context is already capped by the caller; no truncation here.
func buildSynthesisPrompt(req *interfaces.SynthesisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n\n", req.AccountName)
	b.WriteString("Recent activity for this account:\n\n")
	b.WriteString(req.Context)
	b.WriteString("\n\nCall the ")
	b.WriteString(synthesisToolName)
	b.WriteString(" tool with the synthesized insights.")
	return b.String()
}

func validateSynthesisRequest(req *interfaces.SynthesisRequest) error {
	if req == nil {
		return fmt.Errorf("synthesis request cannot be nil")
	}
	if strings.TrimSpace(req.Context) == "" {
		return fmt.Errorf("synthesis context cannot be empty")
	}
	return nil
}
