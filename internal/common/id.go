package common

import (
	"github.com/google/uuid"
)

// NewAccountID generates a unique account ID with the "acct_" prefix
func NewAccountID() string {
	return "acct_" + uuid.New().String()
}

// NewCallID generates a unique call ID with the "call_" prefix
func NewCallID() string {
	return "call_" + uuid.New().String()
}

// NewStakeholderID generates a unique stakeholder ID with the "stk_" prefix
func NewStakeholderID() string {
	return "stk_" + uuid.New().String()
}

// NewEmailID generates a unique email log ID with the "email_" prefix
func NewEmailID() string {
	return "email_" + uuid.New().String()
}
