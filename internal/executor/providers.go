package executor

import (
	"context"
	"fmt"
	"os"

	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGoogleAI  = "googleai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderEcho      = "echo"

	DefaultProvider = ProviderGoogleAI
	DefaultModel    = "gemini-1.5-flash-002"

	defaultOllamaURL = "http://localhost:11434"
)

// Providers lists every supported provider name.
var Providers = []string{ProviderOpenAI, ProviderGoogleAI, ProviderOllama, ProviderAnthropic, ProviderEcho}

// ProviderConfig selects and configures the text-generation backend.
type ProviderConfig struct {
	Name    string `mapstructure:"name"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// APIKeyEnv returns the conventional environment variable holding the
// provider's key, or "" when the provider needs none.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogleAI:
		return "GOOGLE_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// LLMGenerator generates text through a langchaingo model.
type LLMGenerator struct {
	model   llms.Model
	options []llms.CallOption
}

func NewLLMGenerator(model llms.Model, options ...llms.CallOption) *LLMGenerator {
	return &LLMGenerator{model: model, options: options}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.options...)
}

// NewGenerator builds the Generator named by cfg.Name.
func NewGenerator(ctx context.Context, cfg ProviderConfig) (Generator, error) {
	if cfg.Name == ProviderEcho {
		return EchoGenerator{}, nil
	}

	model, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewLLMGenerator(model), nil
}

// NewModel constructs the langchaingo model for a provider.
func NewModel(ctx context.Context, cfg ProviderConfig) (llms.Model, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		if env := APIKeyEnv(cfg.Name); env != "" {
			apiKey = os.Getenv(env)
		}
	}

	var (
		model llms.Model
		err   error
	)

	switch cfg.Name {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, missingKeyError(cfg.Name)
		}
		opts := []openai.Option{openai.WithToken(apiKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)

	case ProviderGoogleAI:
		if apiKey == "" {
			return nil, missingKeyError(cfg.Name)
		}
		opts := []googleai.Option{googleai.WithAPIKey(apiKey)}
		if cfg.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(cfg.Model))
		}
		model, err = googleai.New(ctx, opts...)

	case ProviderOllama:
		serverURL := cfg.BaseURL
		if serverURL == "" {
			serverURL = defaultOllamaURL
		}
		opts := []ollama.Option{ollama.WithServerURL(serverURL)}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		model, err = ollama.New(opts...)

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, missingKeyError(cfg.Name)
		}
		opts := []anthropic.Option{anthropic.WithToken(apiKey)}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		model, err = anthropic.New(opts...)

	default:
		return nil, wferrors.NewConfigError(fmt.Sprintf("Unknown provider %q", cfg.Name), nil).
			WithContext("provider", cfg.Name).
			WithTroubleshooting(fmt.Sprintf("Use one of: %v", Providers))
	}

	if err != nil {
		return nil, wferrors.NewConfigError(fmt.Sprintf("Failed to initialize %s provider", cfg.Name), err).
			WithContext("provider", cfg.Name)
	}
	return model, nil
}

func missingKeyError(provider string) error {
	return wferrors.NewConfigError(fmt.Sprintf("No API key configured for provider %s", provider), nil).
		WithContext("provider", provider).
		WithTroubleshooting(
			"Set provider.api_key in the config file",
			fmt.Sprintf("Or export %s", APIKeyEnv(provider)),
		)
}
