package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractTarget struct {
	BusinessContext string   `json:"business_context"`
	PainPoints      []string `json:"pain_points"`
}

func completionDoc(t *testing.T, toolName string, args interface{}) []byte {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	require.NoError(t, err)

	doc := map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"content": "",
					"tool_calls": []map[string]interface{}{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]interface{}{
								"name": toolName,
								// Arguments are double-encoded on the wire
								"arguments": string(argsJSON),
							},
						},
					},
				},
			},
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestExtractToolPayload_Success(t *testing.T) {
	doc := completionDoc(t, "record_insights", extractTarget{
		BusinessContext: "Mid-market SaaS expanding into Europe",
		PainPoints:      []string{"manual onboarding", "churn visibility"},
	})

	var got extractTarget
	err := ExtractToolPayload(doc, "record_insights", &got)

	require.NoError(t, err)
	assert.Equal(t, "Mid-market SaaS expanding into Europe", got.BusinessContext)
	assert.Equal(t, []string{"manual onboarding", "churn visibility"}, got.PainPoints)
}

func TestExtractToolPayload_MissingToolCall(t *testing.T) {
	doc := []byte(`{"choices":[{"message":{"content":"Here are some thoughts instead."}}]}`)

	var got extractTarget
	err := ExtractToolPayload(doc, "record_insights", &got)

	require.ErrorIs(t, err, ErrMissingToolCall)
}

func TestExtractToolPayload_WrongTool(t *testing.T) {
	doc := completionDoc(t, "some_other_tool", extractTarget{})

	var got extractTarget
	err := ExtractToolPayload(doc, "record_insights", &got)

	var wrongTool *WrongToolError
	require.ErrorAs(t, err, &wrongTool)
	assert.Equal(t, "record_insights", wrongTool.Want)
	assert.Equal(t, "some_other_tool", wrongTool.Got)
}

func TestExtractToolPayload_MalformedDocument(t *testing.T) {
	var got extractTarget
	err := ExtractToolPayload([]byte(`{"choices":`), "record_insights", &got)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestExtractToolPayload_MalformedArguments(t *testing.T) {
	doc := []byte(`{"choices":[{"message":{"tool_calls":[{"type":"function","function":{"name":"record_insights","arguments":"{broken"}}]}}]}`)

	var got extractTarget
	err := ExtractToolPayload(doc, "record_insights", &got)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.False(t, errors.Is(err, ErrMissingToolCall))
}

func TestMapHTTPStatus(t *testing.T) {
	assert.ErrorIs(t, MapHTTPStatus(429, "slow down"), ErrRateLimited)
	assert.ErrorIs(t, MapHTTPStatus(402, "no credits"), ErrQuotaExceeded)

	err := MapHTTPStatus(500, "boom")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 500, upstream.StatusCode)
	assert.Equal(t, "boom", upstream.Body)
}
