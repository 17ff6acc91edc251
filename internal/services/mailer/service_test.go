package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/suadeo/internal/common"
)

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "acme.com", senderDomain("dana@acme.com"))
	assert.Equal(t, "acme.com", senderDomain("Dana@ACME.COM"))
	assert.Equal(t, "acme.com", senderDomain(`"odd@name"@acme.com`))
	assert.Empty(t, senderDomain("not-an-address"))
	assert.Empty(t, senderDomain(""))
}

func TestIsConfigured(t *testing.T) {
	logger := common.GetLogger()

	disabled := NewService(&common.ImapConfig{
		Host: "imap.example.com", Username: "u", Password: "p",
	}, nil, logger)
	assert.False(t, disabled.IsConfigured())

	missingHost := NewService(&common.ImapConfig{
		Enabled: true, Username: "u", Password: "p",
	}, nil, logger)
	assert.False(t, missingHost.IsConfigured())

	ready := NewService(&common.ImapConfig{
		Enabled: true, Host: "imap.example.com", Username: "u", Password: "p",
	}, nil, logger)
	assert.True(t, ready.IsConfigured())
}
