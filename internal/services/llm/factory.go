package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/interfaces"
)

// NewCompletionService creates the appropriate completion service
// implementation based on the configured default provider.
func NewCompletionService(cfg *common.Config, logger arbor.ILogger) (interfaces.CompletionService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderClaude
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing completion service")

	switch provider {
	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)

	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, logger)

	case common.LLMProviderCompat:
		return NewCompatService(&cfg.Compat, logger)

	default:
		return nil, fmt.Errorf("invalid completion provider '%s': must be 'claude', 'gemini' or 'compat'", provider)
	}
}
