package insights

import (
	"fmt"
	"strings"

	"github.com/ternarybob/suadeo/internal/models"
)

// contextBuilder renders the bounded textual context submitted for narrative
// synthesis. Caps are enforced here so the AI round trip cost stays bounded
// no matter how large the account history grows.
type contextBuilder struct {
	maxCalls         int
	maxEmails        int
	maxExcerptLength int
}

func newContextBuilder(maxCalls, maxEmails, maxExcerptLength int) *contextBuilder {
	if maxCalls <= 0 {
		maxCalls = 10
	}
	if maxEmails <= 0 {
		maxEmails = 10
	}
	if maxExcerptLength <= 0 {
		maxExcerptLength = 1500
	}
	return &contextBuilder{
		maxCalls:         maxCalls,
		maxEmails:        maxEmails,
		maxExcerptLength: maxExcerptLength,
	}
}

// Build renders the synthesis context from newest-first source collections.
// Sections whose fetch failed arrive as empty slices and are simply omitted.
func (b *contextBuilder) Build(calls []*models.Call, stakeholders []*models.Stakeholder, emails []*models.EmailLog) string {
	var out strings.Builder

	if len(stakeholders) > 0 {
		out.WriteString("## Stakeholders\n\n")
		for _, s := range stakeholders {
			fmt.Fprintf(&out, "- %s", s.Name)
			if s.Role != "" {
				fmt.Fprintf(&out, " (%s)", s.Role)
			}
			if s.Influence != "" {
				fmt.Fprintf(&out, ", influence: %s", s.Influence)
			}
			if s.Notes != "" {
				fmt.Fprintf(&out, " - %s", b.excerpt(s.Notes))
			}
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}

	if len(calls) > 0 {
		out.WriteString("## Recent calls (newest first)\n\n")
		for i, call := range calls {
			if i >= b.maxCalls {
				break
			}
			fmt.Fprintf(&out, "### Call on %s\n", call.OccurredAt.Format("2006-01-02"))
			if len(call.Participants) > 0 {
				fmt.Fprintf(&out, "Participants: %s\n", strings.Join(call.Participants, ", "))
			}
			fmt.Fprintf(&out, "%s\n\n", b.excerpt(call.Transcript))
		}
	}

	if len(emails) > 0 {
		out.WriteString("## Recent emails (newest first)\n\n")
		for i, email := range emails {
			if i >= b.maxEmails {
				break
			}
			fmt.Fprintf(&out, "### %s email on %s: %s\n", email.Direction, email.SentAt.Format("2006-01-02"), email.Subject)
			if email.From != "" {
				fmt.Fprintf(&out, "From: %s\n", email.From)
			}
			fmt.Fprintf(&out, "%s\n\n", b.excerpt(email.Body))
		}
	}

	return strings.TrimRight(out.String(), "\n")
}

// excerpt caps text at the configured length, counted in runes so multi-byte
// content is never cut mid-character.
func (b *contextBuilder) excerpt(text string) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= b.maxExcerptLength {
		return trimmed
	}
	return string(runes[:b.maxExcerptLength]) + "..."
}
