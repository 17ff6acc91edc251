package models

import (
	"time"
)

// Account represents a prospect company being worked by a sales rep.
type Account struct {
	ID       string `json:"id" badgerhold:"key"` // acct_{uuid}
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`   // Company website domain, used for email matching
	Industry string `json:"industry,omitempty"` // Explicit value wins; synthesis only fills this when empty
	Stage    string `json:"stage,omitempty"`    // Pipeline stage label (free-form, UI-owned)
	OwnerID  string `json:"owner_id,omitempty"` // Identity of the owning rep

	// Insights is the cached account-level insight snapshot. Replaced
	// wholesale on each regeneration, never patched.
	Insights *AccountInsightSnapshot `json:"insights,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
