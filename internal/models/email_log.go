package models

import (
	"time"
)

// EmailDirection indicates who sent an email relative to the rep.
type EmailDirection string

const (
	EmailInbound  EmailDirection = "inbound"
	EmailOutbound EmailDirection = "outbound"
)

// EmailLog represents one logged email exchanged with a prospect account.
// Entries are created manually through the API or ingested from the
// configured IMAP mailbox.
type EmailLog struct {
	ID        string         `json:"id" badgerhold:"key"` // email_{uuid}
	AccountID string         `json:"account_id" badgerhold:"index"`
	Direction EmailDirection `json:"direction"`
	From      string         `json:"from"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`

	// MessageRef is the mailbox sequence reference for ingested mail,
	// used to avoid double-ingesting the same message.
	MessageRef string `json:"message_ref,omitempty" badgerhold:"index"`

	SentAt    time.Time `json:"sent_at" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
}
