package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Provider names accepted in MODEL_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// Config holds every credential and knob the application reads from the
// environment. Only the model-provider credential is required: a missing
// tool credential degrades that tool at invocation time instead of failing
// startup.
type Config struct {
	Provider string
	Model    string

	OpenAIKey       string
	AnthropicKey    string
	GoogleKey       string
	OllamaHost      string
	TavilyKey       string
	AlphaVantageKey string
}

// Load reads the optional .env file, then the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Provider:        strings.ToLower(getEnvOrDefault("MODEL_PROVIDER", ProviderOpenAI)),
		Model:           os.Getenv("MODEL"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		GoogleKey:       getEnvOrDefault("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
		OllamaHost:      os.Getenv("OLLAMA_HOST"),
		TavilyKey:       os.Getenv("TAVILY_API_KEY"),
		AlphaVantageKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderGemini:
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderOllama:
		// Local provider, no credential.
	default:
		return fmt.Errorf("unknown MODEL_PROVIDER %q", c.Provider)
	}
	return nil
}

// MissingToolCredentials names the optional tool credentials that are not
// set. The affected tools stay registered and report the gap themselves
// when invoked.
func (c *Config) MissingToolCredentials() []string {
	var missing []string
	if c.TavilyKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}
	if c.AlphaVantageKey == "" {
		missing = append(missing, "ALPHAVANTAGE_API_KEY")
	}
	return missing
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case ProviderGemini:
		return "gemini-1.5-pro"
	case ProviderOllama:
		return "llama3.1"
	default:
		return "gpt-4o"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
