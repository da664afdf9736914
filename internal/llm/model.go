package llm

import (
	"fmt"

	"github.com/giantswarm/sleuth/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel creates the chat model described by cfg.
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for llm provider %s", cfg.Provider)
	}

	switch cfg.Provider {
	case config.LLMProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic model: %w", err)
		}
		return model, nil

	case config.LLMProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai model: %w", err)
		}
		return model, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// CallOptions converts the generation settings in cfg into call options.
func CallOptions(cfg config.LLMConfig) []llms.CallOption {
	var opts []llms.CallOption
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(cfg.Temperature))
	}
	return opts
}
