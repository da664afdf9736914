package config

import "time"

// Config is the top-level configuration structure for sleuth.
type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	LLM       LLMConfig       `yaml:"llm"`
	Execution ExecutionConfig `yaml:"execution"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
	Console   ConsoleConfig   `yaml:"console"`
}

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// ProviderConfig describes the capability provider to connect to.
type ProviderConfig struct {
	Transport string            `yaml:"transport,omitempty"`
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	// PassEnv lists variables copied from sleuth's own environment into the
	// provider process, e.g. TAVILY_API_KEY.
	PassEnv     []string          `yaml:"passEnv,omitempty"`
	URL         string            `yaml:"url,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	InitTimeout time.Duration     `yaml:"initTimeout,omitempty"`
}

// LLM providers supported by the planner and analyzer.
const (
	LLMProviderAnthropic = "anthropic"
	LLMProviderOpenAI    = "openai"
)

// LLMConfig configures the language model behind the planner and analyzer.
type LLMConfig struct {
	Provider    string  `yaml:"provider,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	BaseURL     string  `yaml:"baseURL,omitempty"`
	APIKey      string  `yaml:"apiKey,omitempty"`
	MaxTokens   int     `yaml:"maxTokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

// ExecutionConfig tunes plan execution.
type ExecutionConfig struct {
	StepTimeout time.Duration `yaml:"stepTimeout,omitempty"`
}

// Record store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverFile   = "file"
)

// StoreConfig selects where research sessions are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"`
	// Path is the database file for sqlite or the directory for file.
	// Relative paths are resolved against the config directory.
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig controls log level and the optional log directory.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	// Dir, if set, receives a timestamped log file per run.
	Dir string `yaml:"dir,omitempty"`
}

// ConsoleConfig configures the interactive console.
type ConsoleConfig struct {
	HistoryFile string `yaml:"historyFile,omitempty"`
}
