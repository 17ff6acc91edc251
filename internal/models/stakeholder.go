package models

import (
	"time"
)

// Stakeholder represents a named contact at a prospect account.
type Stakeholder struct {
	ID        string `json:"id" badgerhold:"key"` // stk_{uuid}
	AccountID string `json:"account_id" badgerhold:"index"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	Influence string `json:"influence,omitempty"` // champion, blocker, neutral, unknown
	Notes     string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
