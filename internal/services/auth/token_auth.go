package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
)

type contextKey string

const identityKey contextKey = "auth.identity"

// Service resolves inbound bearer tokens to caller identities. Identities
// feed the regeneration rate limiter, so every authenticated request carries
// one.
type Service struct {
	identities map[string]string // token -> identity
	logger     arbor.ILogger
}

// NewService creates a token authenticator from the configured identity
// token map.
func NewService(cfg *common.AuthConfig, logger arbor.ILogger) *Service {
	identities := make(map[string]string, len(cfg.Tokens))
	for identity, token := range cfg.Tokens {
		if token == "" {
			continue
		}
		identities[token] = identity
	}

	logger.Debug().Int("identities", len(identities)).Msg("Token authenticator initialized")

	return &Service{
		identities: identities,
		logger:     logger,
	}
}

// Authenticate resolves the request's bearer token to an identity. Returns
// false for a missing, malformed or unknown token.
func (s *Service) Authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	identity, known := s.identities[token]
	return identity, known
}

// WithIdentity stores the authenticated identity on the request context.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated caller identity, or empty
// when the request was not authenticated.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}
