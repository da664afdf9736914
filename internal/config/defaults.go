package config

import "time"

const (
	// DefaultStepTimeout bounds a single capability invocation.
	DefaultStepTimeout = 30 * time.Second

	// DefaultInitTimeout bounds provider start-up and the protocol handshake.
	DefaultInitTimeout = 10 * time.Second

	DefaultAnthropicModel = "claude-3-opus-20240229"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultMaxTokens      = 2000

	defaultSQLiteFile = "sleuth.db"
	defaultFileDir    = "sessions"
	defaultHistory    = "history"
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
// The default provider is the Tavily search MCP server.
func GetDefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Transport:   TransportStdio,
			Command:     "npx",
			Args:        []string{"-y", "tavily-mcp"},
			PassEnv:     []string{"TAVILY_API_KEY"},
			InitTimeout: DefaultInitTimeout,
		},
		LLM: LLMConfig{
			Provider:  LLMProviderAnthropic,
			Model:     DefaultAnthropicModel,
			MaxTokens: DefaultMaxTokens,
		},
		Execution: ExecutionConfig{
			StepTimeout: DefaultStepTimeout,
		},
		Store: StoreConfig{
			Driver: StoreDriverSQLite,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
