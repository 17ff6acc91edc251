package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"golang.org/x/time/rate"
)

// upstreamBodyLimit caps how much of an error response body is retained for
// diagnostics.
const upstreamBodyLimit = 4096

// CompatService implements the CompletionService interface against an
// OpenAI-compatible HTTP endpoint. It targets self-hosted gateways (vLLM,
// LiteLLM and similar) that speak the chat completions wire format, including
// server-sent event streaming and double-encoded tool call arguments.
type CompatService struct {
	config  *common.CompatConfig
	logger  arbor.ILogger
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	timeout time.Duration
}

// chatCompletionRequest is the outbound chat completions request body.
type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []chatMessage     `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float32           `json:"temperature,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
	Tools       []chatToolDef     `json:"tools,omitempty"`
	ToolChoice  *chatToolChoice   `json:"tool_choice,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatToolDef struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type chatToolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// NewCompatService creates a completion service backed by an
// OpenAI-compatible endpoint.
func NewCompatService(compatConfig *common.CompatConfig, logger arbor.ILogger) (*CompatService, error) {
	if compatConfig.BaseURL == "" {
		return nil, fmt.Errorf("compat endpoint base URL is required (set via SUADEO_COMPAT_BASE_URL or compat.base_url in config)")
	}

	timeout, err := time.ParseDuration(compatConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", compatConfig.Timeout, err)
	}

	interval := common.ParseDurationOr(compatConfig.RateLimit, time.Second)

	service := &CompatService{
		config:  compatConfig,
		logger:  logger,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		baseURL: strings.TrimSuffix(compatConfig.BaseURL, "/"),
		timeout: timeout,
	}

	logger.Debug().
		Str("base_url", service.baseURL).
		Str("model", compatConfig.Model).
		Dur("timeout", timeout).
		Dur("rate_limit", interval).
		Msg("Compat completion service initialized successfully")

	return service, nil
}

// SynthesizeInsights submits the account context with a forced tool choice
// and decodes the single expected tool invocation from the completion.
func (s *CompatService) SynthesizeInsights(ctx context.Context, req *interfaces.SynthesisRequest) (*interfaces.SynthesisResult, error) {
	if err := validateSynthesisRequest(req); err != nil {
		return nil, err
	}

	body := &chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: synthesisSystemPrompt},
			{Role: "user", Content: buildSynthesisPrompt(req)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		Tools: []chatToolDef{
			{
				Type: "function",
				Function: chatToolFunction{
					Name:        synthesisToolName,
					Description: synthesisToolDescription,
					Parameters: map[string]interface{}{
						"type":       "object",
						"properties": synthesisToolProperties(),
					},
				},
			},
		},
	}
	choice := &chatToolChoice{Type: "function"}
	choice.Function.Name = synthesisToolName
	body.ToolChoice = choice

	startTime := time.Now()
	doc, err := s.roundTrip(ctx, body)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("account", req.AccountName).
			Msg("Insight synthesis request failed")
		return nil, err
	}

	var result interfaces.SynthesisResult
	if err := ExtractToolPayload(doc, synthesisToolName, &result); err != nil {
		s.logger.Warn().
			Err(err).
			Str("account", req.AccountName).
			Msg("Insight synthesis returned no usable tool call")
		return nil, err
	}

	s.logger.Debug().
		Str("account", req.AccountName).
		Dur("duration", time.Since(startTime)).
		Msg("Insight synthesis completed successfully")

	return &result, nil
}

// StreamResearch streams a free-text completion, invoking onDelta per content
// delta. Upstream status failures are mapped before any byte decoding begins.
func (s *CompatService) StreamResearch(ctx context.Context, prompt string, onDelta func(delta string) error) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("research prompt cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return wrapTransportErr(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body := &chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		Stream:      true,
	}

	resp, err := s.post(timeoutCtx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return MapHTTPStatus(resp.StatusCode, readBodyPrefix(resp.Body))
	}

	decoder := NewStreamDecoder(resp.Body)
	if err := decoder.Decode(timeoutCtx, onDelta); err != nil {
		return wrapTransportErr(err)
	}
	return nil
}

// HealthCheck performs a minimal non-streamed round trip against the endpoint.
func (s *CompatService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running compat completion service health check")

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body := &chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: "ping"},
		},
		MaxTokens: 16,
	}

	resp, err := s.post(healthCheckCtx, body)
	if err != nil {
		return fmt.Errorf("compat probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("compat probe failed: %w", MapHTTPStatus(resp.StatusCode, readBodyPrefix(resp.Body)))
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Compat completion service health check passed")

	return nil
}

func (s *CompatService) Provider() string {
	return string(common.LLMProviderCompat)
}

func (s *CompatService) Close() error {
	s.logger.Debug().Msg("Closing compat completion service")
	s.client.CloseIdleConnections()
	return nil
}

// roundTrip executes a non-streamed completion request and returns the raw
// completion document. Status mapping happens before the body is decoded.
func (s *CompatService) roundTrip(ctx context.Context, body *chatCompletionRequest) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, wrapTransportErr(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.post(timeoutCtx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, MapHTTPStatus(resp.StatusCode, readBodyPrefix(resp.Body))
	}

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(fmt.Errorf("failed to read completion response: %w", err))
	}
	return doc, nil
}

func (s *CompatService) post(ctx context.Context, body *chatCompletionRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	return resp, nil
}

func readBodyPrefix(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, upstreamBodyLimit))
	return string(data)
}
