package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/models"
)

// fetchedEmail is one message pulled from the prospect mailbox
type fetchedEmail struct {
	MessageRef string
	From       string
	Subject    string
	Body       string
	Date       time.Time
}

// Service ingests prospect replies from the configured IMAP mailbox and files
// them into the email log of the account whose domain matches the sender.
type Service struct {
	config  *common.ImapConfig
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a new mailbox ingest service
func NewService(config *common.ImapConfig, storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		storage: storage,
		logger:  logger,
	}
}

// IsConfigured checks if the mailbox is configured with minimum required settings
func (s *Service) IsConfigured() bool {
	return s.config.Enabled && s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// IngestOnce fetches unseen mailbox messages, matches each sender to an
// account by domain, and stores unmatched or already-seen messages nowhere.
// Returns the number of emails stored.
func (s *Service) IngestOnce(ctx context.Context, limit int) (int, error) {
	if !s.IsConfigured() {
		return 0, fmt.Errorf("IMAP not configured")
	}

	emails, err := s.fetchUnseen(limit)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, nil
	}

	domains, err := s.accountsByDomain(ctx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, email := range emails {
		seen, err := s.storage.EmailStorage().HasMessageRef(ctx, email.MessageRef)
		if err != nil {
			s.logger.Warn().Err(err).Str("message_ref", email.MessageRef).Msg("Dedup check failed, skipping message")
			continue
		}
		if seen {
			continue
		}

		accountID, ok := domains[senderDomain(email.From)]
		if !ok {
			s.logger.Debug().Str("from", email.From).Msg("No account matches sender domain")
			continue
		}

		if err := s.storage.EmailStorage().SaveEmail(ctx, &models.EmailLog{
			ID:         common.NewEmailID(),
			AccountID:  accountID,
			Direction:  models.EmailInbound,
			From:       email.From,
			Subject:    email.Subject,
			Body:       email.Body,
			MessageRef: email.MessageRef,
			SentAt:     email.Date,
		}); err != nil {
			s.logger.Error().Err(err).Str("message_ref", email.MessageRef).Msg("Failed to store ingested email")
			continue
		}
		stored++
	}

	s.logger.Info().
		Int("fetched", len(emails)).
		Int("stored", stored).
		Msg("Mailbox ingest complete")
	return stored, nil
}

// accountsByDomain builds a sender-domain lookup over all accounts. Accounts
// without a domain never match.
func (s *Service) accountsByDomain(ctx context.Context) (map[string]string, error) {
	accounts, err := s.storage.AccountStorage().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for domain matching: %w", err)
	}

	domains := make(map[string]string, len(accounts))
	for _, account := range accounts {
		if account.Domain == "" {
			continue
		}
		domains[strings.ToLower(account.Domain)] = account.ID
	}
	return domains, nil
}

// senderDomain extracts the lowercased domain from an email address
func senderDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}

// fetchUnseen connects to the mailbox and fetches up to limit unseen messages
func (s *Service) fetchUnseen(limit int) ([]fetchedEmail, error) {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var c *client.Client
	var err error
	if s.config.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.config.Username, s.config.Password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	mbox, err := c.Select("INBOX", false)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search for unseen messages: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}
	if limit > 0 && len(seqNums) > limit {
		seqNums = seqNums[:limit]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	messages := make(chan *imap.Message, len(seqNums))
	section := &imap.BodySectionName{}

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}, messages)
	}()

	var emails []fetchedEmail
	for msg := range messages {
		if msg == nil || msg.Envelope == nil {
			continue
		}

		body, err := parseMessageBody(msg, section)
		if err != nil {
			s.logger.Warn().Err(err).Int64("seq", int64(msg.SeqNum)).Msg("Failed to parse message body")
			continue
		}

		from := ""
		if len(msg.Envelope.From) > 0 {
			from = msg.Envelope.From[0].Address()
		}

		ref := msg.Envelope.MessageId
		if ref == "" {
			// Fall back to a mailbox-positional reference
			ref = fmt.Sprintf("%s/%d/%d", s.config.Username, mbox.UidValidity, msg.SeqNum)
		}

		emails = append(emails, fetchedEmail{
			MessageRef: ref,
			From:       from,
			Subject:    msg.Envelope.Subject,
			Body:       body,
			Date:       msg.Envelope.Date,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return emails, nil
}

// parseMessageBody extracts the text body from an IMAP message
func parseMessageBody(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	r := msg.GetBody(section)
	if r == nil {
		return "", fmt.Errorf("no body section")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}

	var body string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read next part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			if strings.HasPrefix(contentType, "text/plain") {
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("failed to read body: %w", err)
				}
				body = string(b)
			}
		}
	}

	return strings.TrimSpace(body), nil
}
