// Package config loads sleuth's configuration.
//
// Configuration lives in a single directory (default ~/.config/sleuth,
// overridable with --config-path) containing config.yaml:
//
//	provider:
//	  transport: stdio            # stdio | sse | streamable-http
//	  command: npx
//	  args: ["-y", "tavily-mcp"]
//	  passEnv: [TAVILY_API_KEY]
//	  initTimeout: 10s
//	llm:
//	  provider: anthropic         # anthropic | openai
//	  model: claude-3-opus-20240229
//	  maxTokens: 2000
//	execution:
//	  stepTimeout: 30s
//	store:
//	  driver: sqlite              # sqlite | file
//	  path: sleuth.db
//	logging:
//	  level: info
//	  dir: logs
//
// Every field is optional; missing values come from GetDefaultConfig.
// SLEUTH_LLM_PROVIDER and SLEUTH_LLM_MODEL override the llm section, and
// ANTHROPIC_API_KEY or OPENAI_API_KEY supply the API key when none is set.
// Relative store, history and log paths are resolved against the config
// directory.
package config
