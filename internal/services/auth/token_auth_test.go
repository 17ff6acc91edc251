package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/suadeo/internal/common"
)

func newTestService() *Service {
	return NewService(&common.AuthConfig{
		Tokens: map[string]string{
			"alice": "token-alice",
			"bob":   "token-bob",
			"empty": "",
		},
	}, common.GetLogger())
}

func TestAuthenticate_ResolvesIdentity(t *testing.T) {
	svc := newTestService()

	r := httptest.NewRequest("POST", "/api/accounts", nil)
	r.Header.Set("Authorization", "Bearer token-alice")

	identity, ok := svc.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, "alice", identity)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	svc := newTestService()

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic token-alice",
		"unknown token":   "Bearer nope",
		"bare bearer":     "Bearer ",
		"empty token map": "Bearer",
	}

	for name, header := range cases {
		r := httptest.NewRequest("POST", "/api/accounts", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		_, ok := svc.Authenticate(r)
		assert.False(t, ok, name)
	}
}

func TestAuthenticate_EmptyConfiguredTokenNeverMatches(t *testing.T) {
	svc := newTestService()

	r := httptest.NewRequest("POST", "/api/accounts", nil)
	r.Header.Set("Authorization", "Bearer ")
	_, ok := svc.Authenticate(r)
	assert.False(t, ok)
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "alice")
	assert.Equal(t, "alice", IdentityFromContext(ctx))
	assert.Empty(t, IdentityFromContext(context.Background()))
}
