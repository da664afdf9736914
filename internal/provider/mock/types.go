package mock

// Config is the YAML document describing a mock provider.
type Config struct {
	// Name is announced as the server name. Defaults to the file name.
	Name      string           `yaml:"name,omitempty"`
	Tools     []ToolConfig     `yaml:"tools"`
	Resources []ResourceConfig `yaml:"resources,omitempty"`
	Prompts   []PromptConfig   `yaml:"prompts,omitempty"`
}

// ToolConfig defines configuration for a mock tool
type ToolConfig struct {
	// Name is the unique identifier for the tool
	Name string `yaml:"name"`
	// Description describes what the tool does
	Description string `yaml:"description"`
	// InputSchema defines the expected input schema (JSON Schema)
	InputSchema map[string]interface{} `yaml:"input_schema,omitempty"`
	// Responses defines possible responses for this tool
	Responses []ToolResponse `yaml:"responses"`
}

// ToolResponse defines a conditional response for a mock tool
type ToolResponse struct {
	// Condition defines parameter matching for this response (optional)
	// If empty, this response is used as a fallback
	Condition map[string]interface{} `yaml:"condition,omitempty"`
	// Response is the response data to return
	Response interface{} `yaml:"response,omitempty"`
	// Error is returned as a tool error result instead of Response
	Error string `yaml:"error,omitempty"`
	// Delay simulates response latency (e.g., "2s", "500ms")
	Delay string `yaml:"delay,omitempty"`
}

// ResourceConfig defines a static text resource.
type ResourceConfig struct {
	URI         string `yaml:"uri"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	MIMEType    string `yaml:"mime_type,omitempty"`
	Text        string `yaml:"text"`
}

// PromptConfig defines a prompt whose message texts are templates over the
// prompt arguments.
type PromptConfig struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Arguments   []PromptArgument `yaml:"arguments,omitempty"`
	Messages    []PromptMessage  `yaml:"messages"`
}

// PromptArgument declares one prompt argument.
type PromptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// PromptMessage is one templated message of a prompt.
type PromptMessage struct {
	// Role is "user" or "assistant". Defaults to "user".
	Role string `yaml:"role,omitempty"`
	Text string `yaml:"text"`
}
