package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService implements the CompletionService interface using the Google
// Gemini API. Insight synthesis uses function calling with a forced function
// name; research uses streamed content generation.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGeminiService creates a new Gemini completion service instance.
func NewGeminiService(geminiConfig *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini service (set via GEMINI_API_KEY or gemini.api_key in config)")
	}

	// Set default model name if not specified
	if geminiConfig.Model == "" {
		geminiConfig.Model = "gemini-2.0-flash"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	interval := common.ParseDurationOr(geminiConfig.RateLimit, 4*time.Second)

	// Initialize genai client
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  geminiConfig,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}

	logger.Debug().
		Str("model", geminiConfig.Model).
		Dur("timeout", timeout).
		Float32("temperature", geminiConfig.Temperature).
		Msg("Gemini completion service initialized successfully")

	return service, nil
}

// SynthesizeInsights submits the account context with a forced function call
// and decodes the function arguments from the response.
func (s *GeminiService) SynthesizeInsights(ctx context.Context, req *interfaces.SynthesisRequest) (*interfaces.SynthesisResult, error) {
	if err := validateSynthesisRequest(req); err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, wrapTransportErr(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(s.config.Temperature),
		SystemInstruction: genai.NewContentFromText(synthesisSystemPrompt, genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: []*genai.FunctionDeclaration{geminiSynthesisDeclaration()}},
		},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{synthesisToolName},
			},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildSynthesisPrompt(req), genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		mapped := s.mapAPIError(err)
		s.logger.Warn().
			Err(mapped).
			Str("account", req.AccountName).
			Msg("Insight synthesis request failed")
		return nil, mapped
	}

	result, err := extractGeminiFunctionResult(resp)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("account", req.AccountName).
			Msg("Insight synthesis returned no usable function call")
		return nil, err
	}

	s.logger.Debug().
		Str("account", req.AccountName).
		Dur("duration", time.Since(startTime)).
		Msg("Insight synthesis completed successfully")

	return result, nil
}

// StreamResearch streams a text completion, invoking onDelta per text part.
func (s *GeminiService) StreamResearch(ctx context.Context, prompt string, onDelta func(delta string) error) error {
	if prompt == "" {
		return fmt.Errorf("research prompt cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return wrapTransportErr(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	for resp, err := range s.client.Models.GenerateContentStream(timeoutCtx, s.config.Model, contents, config) {
		if err != nil {
			return s.mapAPIError(err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		if err := onDelta(text); err != nil {
			return fmt.Errorf("delta callback failed: %w", err)
		}
	}
	return nil
}

// HealthCheck verifies the Gemini API is reachable with a minimal probe.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Gemini completion service health check")

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText("ping", genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(healthCheckCtx, s.config.Model, contents, nil)
	if err != nil {
		return fmt.Errorf("Gemini probe failed: %w", s.mapAPIError(err))
	}
	if resp == nil || len(strings.TrimSpace(resp.Text())) == 0 {
		return fmt.Errorf("Gemini probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Gemini completion service health check passed")

	return nil
}

func (s *GeminiService) Provider() string {
	return string(common.LLMProviderGemini)
}

func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini completion service")

	// Clear client reference (genai.Client doesn't require explicit Close)
	s.client = nil

	return nil
}

// mapAPIError translates Gemini API errors into the typed error taxonomy.
// The genai SDK surfaces quota failures as RESOURCE_EXHAUSTED text rather
// than a stable error type, so classification is string based.
func (s *GeminiService) mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "RESOURCE_EXHAUSTED") {
		return ErrRateLimited
	}
	if strings.Contains(errStr, "402") || strings.Contains(errStr, "quota") {
		return ErrQuotaExceeded
	}
	return wrapTransportErr(err)
}

// geminiSynthesisDeclaration mirrors the shared synthesis tool schema in the
// genai declaration format.
func geminiSynthesisDeclaration() *genai.FunctionDeclaration {
	stringSchema := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	stringArraySchema := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}

	return &genai.FunctionDeclaration{
		Name:        synthesisToolName,
		Description: synthesisToolDescription,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"business_context":      stringSchema("What the prospect's business does and the situation driving this deal"),
				"pain_points":           stringArraySchema("Distinct pain points the prospect has voiced"),
				"decision_process":      stringSchema("How the account makes buying decisions, including known approvers"),
				"competitors_mentioned": stringArraySchema("Competitor names raised anywhere in the context"),
				"communication_summary": stringSchema("How the prospect communicates and how the relationship has evolved"),
				"key_opportunities":     stringArraySchema("Concrete openings the seller should pursue next"),
				"relationship_health":   stringSchema("One-line assessment of relationship health"),
				"industry":              stringSchema("The account's industry, only if evident from the context"),
			},
		},
	}
}

// extractGeminiFunctionResult finds the synthesis function call in the
// response. Text-only responses are a hard failure.
func extractGeminiFunctionResult(resp *genai.GenerateContentResponse) (*interfaces.SynthesisResult, error) {
	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return nil, ErrMissingToolCall
	}

	call := calls[0]
	if call.Name != synthesisToolName {
		return nil, &WrongToolError{Want: synthesisToolName, Got: call.Name}
	}

	// Round-trip the argument map through JSON into the typed result
	raw, err := json.Marshal(call.Args)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed function arguments", Err: err}
	}
	var result interfaces.SynthesisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &DecodeError{Reason: "malformed function arguments", Err: err}
	}
	return &result, nil
}
