package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"golang.org/x/time/rate"
)

// ClaudeService implements the CompletionService interface using the
// Anthropic Claude API. Insight synthesis uses native tool use with a forced
// tool choice; research uses streamed text completions.
type ClaudeService struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int
}

// NewClaudeService creates a new Claude completion service instance.
func NewClaudeService(claudeConfig *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set via ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	// Set default model name if not specified
	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-sonnet-4-20250514"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
	}

	// Set default max tokens
	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	interval := common.ParseDurationOr(claudeConfig.RateLimit, time.Second)

	client := anthropic.NewClient(
		option.WithAPIKey(claudeConfig.APIKey),
	)

	service := &ClaudeService{
		config:    claudeConfig,
		logger:    logger,
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Dur("timeout", timeout).
		Float32("temperature", claudeConfig.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude completion service initialized successfully")

	return service, nil
}

// SynthesizeInsights submits the account context and extracts the synthesis
// tool invocation from the response content blocks.
func (s *ClaudeService) SynthesizeInsights(ctx context.Context, req *interfaces.SynthesisRequest) (*interfaces.SynthesisResult, error) {
	if err := validateSynthesisRequest(req); err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, wrapTransportErr(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	tool := anthropic.ToolParam{
		Name:        synthesisToolName,
		Description: anthropic.String(synthesisToolDescription),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: synthesisToolProperties(),
		},
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: synthesisSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSynthesisPrompt(req))),
		},
		Tools: []anthropic.ToolUnionParam{
			{OfTool: &tool},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: synthesisToolName},
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		mapped := s.mapAPIError(err)
		s.logger.Warn().
			Err(mapped).
			Str("account", req.AccountName).
			Msg("Insight synthesis request failed")
		return nil, mapped
	}

	result, err := extractClaudeToolResult(resp)
	if err != nil {
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

	return result, nil
}

// StreamResearch streams a text completion, invoking onDelta per text delta.
func (s *ClaudeService) StreamResearch(ctx context.Context, prompt string, onDelta func(delta string) error) error {
	if prompt == "" {
		return fmt.Errorf("research prompt cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return wrapTransportErr(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	stream := s.client.Messages.NewStreaming(timeoutCtx, params)
	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text == "" {
					continue
				}
				if err := onDelta(deltaVariant.Text); err != nil {
					return fmt.Errorf("delta callback failed: %w", err)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return s.mapAPIError(err)
	}
	return nil
}

// HealthCheck verifies the Claude API is reachable with a minimal probe.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Claude completion service health check")

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	}

	resp, err := s.client.Messages.New(healthCheckCtx, params)
	if err != nil {
		return fmt.Errorf("Claude probe failed: %w", s.mapAPIError(err))
	}
	if len(resp.Content) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Claude completion service health check passed")

	return nil
}

func (s *ClaudeService) Provider() string {
	return string(common.LLMProviderClaude)
}

func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude completion service")
	// Claude client doesn't require explicit cleanup
	return nil
}

// mapAPIError translates SDK errors into the typed error taxonomy.
func (s *ClaudeService) mapAPIError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return MapHTTPStatus(apierr.StatusCode, apierr.Error())
	}
	return wrapTransportErr(err)
}

// extractClaudeToolResult finds the synthesis tool invocation among the
// response content blocks. Prose-only responses are a hard failure.
func extractClaudeToolResult(resp *anthropic.Message) (*interfaces.SynthesisResult, error) {
	for _, block := range resp.Content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		if toolUse.Name != synthesisToolName {
			return nil, &WrongToolError{Want: synthesisToolName, Got: toolUse.Name}
		}

		var result interfaces.SynthesisResult
		if err := json.Unmarshal([]byte(toolUse.JSON.Input.Raw()), &result); err != nil {
			return nil, &DecodeError{Reason: "malformed tool arguments", Err: err}
		}
		return &result, nil
	}
	return nil, ErrMissingToolCall
}
