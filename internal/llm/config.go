package llm

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	// ProviderNone runs the interviewer on its built-in fallbacks only.
	ProviderNone = "none"
)

// ErrNoProvider is returned by NewProvider when no LLM is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend. Empty means discover from the standard
	// API key variables, falling back to "none".
	Provider string `koanf:"provider"`

	Anthropic  AnthropicConfig  `koanf:"anthropic"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	OpenRouter OpenRouterConfig `koanf:"openrouter"`
	Retry      RetryConfig      `koanf:"retry"`

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration `koanf:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`

	// HTTPClient overrides the SDK's default client.
	HTTPClient *http.Client `koanf:"-"`
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`

	// SiteURL and AppName are sent as attribution headers and show up on
	// the OpenRouter dashboard.
	SiteURL string `koanf:"site_url"`
	AppName string `koanf:"app_name"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model:   "anthropic/claude-sonnet-4.5",
			AppName: "dataready",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 45 * time.Second,
	}
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandKeys substitutes ${VAR} references in API keys so config files can
// point at secrets held in the environment.
func (c *Config) ExpandKeys() {
	expand := func(s string) string {
		return envRefPattern.ReplaceAllStringFunc(s, func(m string) string {
			return os.Getenv(envRefPattern.FindStringSubmatch(m)[1])
		})
	}
	c.Anthropic.APIKey = expand(c.Anthropic.APIKey)
	c.OpenAI.APIKey = expand(c.OpenAI.APIKey)
	c.Gemini.APIKey = expand(c.Gemini.APIKey)
	c.OpenRouter.APIKey = expand(c.OpenRouter.APIKey)
}

// Resolve fills in an empty Provider by probing the standard API key
// variables in priority order (OpenAI, Anthropic, Gemini, OpenRouter).
// Without any key the provider becomes "none".
func (c Config) Resolve() Config {
	if c.Provider != "" {
		return c
	}
	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"OPENAI_API_KEY", ProviderOpenAI, &c.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &c.Anthropic.APIKey},
		{"GEMINI_API_KEY", ProviderGemini, &c.Gemini.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &c.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if *p.key != "" {
			c.Provider = p.provider
			return c
		}
		if k := os.Getenv(p.env); k != "" {
			*p.key = k
			c.Provider = p.provider
			return c
		}
	}
	c.Provider = ProviderNone
	return c
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("llm.anthropic.api_key is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("llm.openai.api_key is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("llm.openrouter.api_key is required for the openrouter provider")
		}
	case ProviderMock, ProviderNone, "":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("llm.retry.max_attempts must not be negative")
	}
	return nil
}
