package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Auth        AuthConfig      `toml:"auth"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Compat      CompatConfig    `toml:"compat"`
	Insights    InsightsConfig  `toml:"insights"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
	Imap        ImapConfig      `toml:"imap"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // Only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// AuthConfig holds the API tokens accepted on inbound requests.
// Each token maps to a caller identity used for rate limiting.
type AuthConfig struct {
	Tokens map[string]string `toml:"tokens"` // identity -> bearer token
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderCompat uses an OpenAI-compatible HTTP endpoint (self-hosted gateways)
	LLMProviderCompat LLMProvider = "compat"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "claude", "gemini" or "compat" (default: "claude")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model name (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model name (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests (default: "4s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// CompatConfig contains configuration for OpenAI-compatible HTTP endpoints.
// Used for self-hosted gateways (vLLM, LiteLLM and similar).
type CompatConfig struct {
	BaseURL     string  `toml:"base_url"`    // Endpoint base URL, e.g. "http://localhost:8000/v1"
	APIKey      string  `toml:"api_key"`     // Bearer token for the endpoint (optional)
	Model       string  `toml:"model"`       // Model name passed through to the gateway
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// InsightsConfig bounds the context assembled for insight synthesis
type InsightsConfig struct {
	MaxCalls         int    `toml:"max_calls"`          // Most recent calls included in synthesis context (default: 10)
	MaxEmails        int    `toml:"max_emails"`         // Most recent emails included in synthesis context (default: 10)
	MaxExcerptLength int    `toml:"max_excerpt_length"` // Per-item excerpt cap in characters (default: 1500)
	StaleAfter       string `toml:"stale_after"`        // Snapshot age after which the scheduler sweep refreshes it (default: "168h")
}

// RateLimitConfig controls the per-identity regeneration limiter
type RateLimitConfig struct {
	Requests int    `toml:"requests"` // Requests allowed per window (default: 10)
	Window   string `toml:"window"`   // Window length as duration string (default: "60s")
}

// ImapConfig contains the prospect-mailbox ingest configuration
type ImapConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"` // Default: 993
	Username string `toml:"username"`
	Password string `toml:"password"`
	UseTLS   bool   `toml:"use_tls"`
}

// SchedulerConfig controls background maintenance jobs
type SchedulerConfig struct {
	Enabled          bool   `toml:"enabled"`
	PruneSchedule    string `toml:"prune_schedule"`    // Cron spec for rate-limiter pruning (default: "@every 1m")
	StaleSweepCron   string `toml:"stale_sweep_cron"`  // Cron spec for stale snapshot sweep (default: "@every 1h")
	StaleSweepLimit  int    `toml:"stale_sweep_limit"` // Max accounts refreshed per sweep (default: 5)
	IngestSchedule   string `toml:"ingest_schedule"`   // Cron spec for IMAP email ingest (default: "@every 15m")
	IngestBatchLimit int    `toml:"ingest_batch"`      // Max emails ingested per run (default: 50)
	GCSchedule       string `toml:"gc_schedule"`       // Cron spec for storage space reclamation (default: "@every 30m")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in suadeo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path:           "./data/suadeo",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Auth: AuthConfig{
			Tokens: map[string]string{},
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Timeout:     "60s",
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "60s",
			RateLimit:   "4s",
			Temperature: 0.3,
		},
		Compat: CompatConfig{
			BaseURL:     "http://localhost:8000/v1",
			Model:       "default",
			MaxTokens:   8192,
			Timeout:     "60s",
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		Insights: InsightsConfig{
			MaxCalls:         10,
			MaxEmails:        10,
			MaxExcerptLength: 1500,
			StaleAfter:       "168h",
		},
		RateLimit: RateLimitConfig{
			Requests: 10,
			Window:   "60s",
		},
		Imap: ImapConfig{
			Enabled: false,
			Port:    993,
			UseTLS:  true,
		},
		Scheduler: SchedulerConfig{
			Enabled:          true,
			PruneSchedule:    "@every 1m",
			StaleSweepCron:   "@every 1h",
			StaleSweepLimit:  5,
			IngestSchedule:   "@every 15m",
			IngestBatchLimit: 50,
			GCSchedule:       "@every 30m",
		},
	}
}

// LoadFromFile loads configuration from a single file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SUADEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SUADEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SUADEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("SUADEO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("SUADEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SUADEO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Provider selection and API keys
	if provider := os.Getenv("SUADEO_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if url := os.Getenv("SUADEO_COMPAT_BASE_URL"); url != "" {
		config.Compat.BaseURL = url
	}
	if key := os.Getenv("SUADEO_COMPAT_API_KEY"); key != "" {
		config.Compat.APIKey = key
	}

	// IMAP ingest credentials
	if host := os.Getenv("SUADEO_IMAP_HOST"); host != "" {
		config.Imap.Host = host
	}
	if username := os.Getenv("SUADEO_IMAP_USERNAME"); username != "" {
		config.Imap.Username = username
	}
	if password := os.Getenv("SUADEO_IMAP_PASSWORD"); password != "" {
		config.Imap.Password = password
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, returning the fallback on failure
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
