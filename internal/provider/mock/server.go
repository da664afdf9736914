package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/giantswarm/sleuth/internal/template"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

// Server is a capability provider driven entirely by a YAML file. Its tools,
// resources and prompts can be swapped at runtime; connected clients receive
// list_changed notifications when that happens.
type Server struct {
	mu        sync.RWMutex
	path      string
	name      string
	tools     map[string]*ToolHandler
	resources map[string]ResourceConfig
	prompts   map[string]PromptConfig

	templateEngine *template.Engine
	mcpServer      *server.MCPServer
}

// ParseConfig decodes and validates a mock provider document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse mock config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the mock provider file at path.
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read mock config file %s: %w", path, err)
	}
	cfg, err := ParseConfig(content)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Name == "" {
		base := filepath.Base(path)
		cfg.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return cfg, nil
}

// Validate checks names are present and unique within each kind.
func (c Config) Validate() error {
	var errs []error

	seen := make(map[string]bool)
	for i, tool := range c.Tools {
		switch {
		case tool.Name == "":
			errs = append(errs, fmt.Errorf("tools[%d]: name is required", i))
		case seen[tool.Name]:
			errs = append(errs, fmt.Errorf("tools[%d]: duplicate tool %q", i, tool.Name))
		}
		seen[tool.Name] = true
	}

	seen = make(map[string]bool)
	for i, res := range c.Resources {
		switch {
		case res.URI == "":
			errs = append(errs, fmt.Errorf("resources[%d]: uri is required", i))
		case seen[res.URI]:
			errs = append(errs, fmt.Errorf("resources[%d]: duplicate resource %q", i, res.URI))
		}
		seen[res.URI] = true
	}

	seen = make(map[string]bool)
	for i, prompt := range c.Prompts {
		switch {
		case prompt.Name == "":
			errs = append(errs, fmt.Errorf("prompts[%d]: name is required", i))
		case seen[prompt.Name]:
			errs = append(errs, fmt.Errorf("prompts[%d]: duplicate prompt %q", i, prompt.Name))
		}
		seen[prompt.Name] = true
	}

	return errors.Join(errs...)
}

// NewServer creates a mock provider serving cfg.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "provider"
	}

	s := &Server{
		name:           name,
		tools:          make(map[string]*ToolHandler),
		resources:      make(map[string]ResourceConfig),
		prompts:        make(map[string]PromptConfig),
		templateEngine: template.New(),
		mcpServer: server.NewMCPServer(
			fmt.Sprintf("mock-%s", name),
			"1.0.0",
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithPromptCapabilities(true),
		),
	}
	s.apply(cfg)
	return s, nil
}

// NewServerFromFile creates a mock provider from the YAML file at path.
// Reload re-reads the same file.
func NewServerFromFile(path string) (*Server, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	s, err := NewServer(cfg)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// Name returns the provider name.
func (s *Server) Name() string {
	return s.name
}

// MCPServer exposes the underlying server, for in-process sessions.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Counts returns the number of tools, resources and prompts currently served.
func (s *Server) Counts() (tools, resources, prompts int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tools), len(s.resources), len(s.prompts)
}

// Reload re-reads the backing file and replaces everything the server offers.
// On a read or parse error the current definitions stay in place.
func (s *Server) Reload() error {
	if s.path == "" {
		return fmt.Errorf("mock provider %s was not loaded from a file", s.name)
	}
	cfg, err := LoadConfig(s.path)
	if err != nil {
		return err
	}
	return s.Apply(cfg)
}

// Apply replaces the served tools, resources and prompts with cfg.
func (s *Server) Apply(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.apply(cfg)
	return nil
}

func (s *Server) apply(cfg Config) {
	s.mu.Lock()
	oldTools := make([]string, 0, len(s.tools))
	for name := range s.tools {
		oldTools = append(oldTools, name)
	}
	oldPrompts := make([]string, 0, len(s.prompts))
	for name := range s.prompts {
		oldPrompts = append(oldPrompts, name)
	}
	oldResources := make([]string, 0, len(s.resources))
	for uri := range s.resources {
		oldResources = append(oldResources, uri)
	}

	s.tools = make(map[string]*ToolHandler, len(cfg.Tools))
	for _, toolConfig := range cfg.Tools {
		s.tools[toolConfig.Name] = NewToolHandler(toolConfig, s.templateEngine)
	}
	s.resources = make(map[string]ResourceConfig, len(cfg.Resources))
	for _, res := range cfg.Resources {
		s.resources[res.URI] = res
	}
	s.prompts = make(map[string]PromptConfig, len(cfg.Prompts))
	for _, prompt := range cfg.Prompts {
		s.prompts[prompt.Name] = prompt
	}
	s.mu.Unlock()

	// The MCP server has its own locking and notifies clients, so it is
	// updated outside mu.
	if len(oldTools) > 0 {
		s.mcpServer.DeleteTools(oldTools...)
	}
	if len(oldPrompts) > 0 {
		s.mcpServer.DeletePrompts(oldPrompts...)
	}
	for _, uri := range oldResources {
		s.mcpServer.RemoveResource(uri)
	}

	for _, toolConfig := range cfg.Tools {
		s.mcpServer.AddTool(newTool(toolConfig), s.createToolHandler(toolConfig.Name))
	}
	for _, res := range cfg.Resources {
		s.mcpServer.AddResource(newResource(res), s.createResourceHandler(res.URI))
	}
	for _, prompt := range cfg.Prompts {
		s.mcpServer.AddPrompt(newPrompt(prompt), s.createPromptHandler(prompt.Name))
	}

	logging.Info("MockProvider", "Provider '%s' serving %d tools, %d resources, %d prompts",
		s.name, len(cfg.Tools), len(cfg.Resources), len(cfg.Prompts))
}

func newTool(cfg ToolConfig) mcp.Tool {
	schema := mcp.ToolInputSchema{Type: "object", Properties: map[string]interface{}{}}
	if props, ok := cfg.InputSchema["properties"].(map[string]interface{}); ok {
		schema.Properties = props
	}
	if required, ok := cfg.InputSchema["required"].([]interface{}); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				schema.Required = append(schema.Required, name)
			}
		}
	}
	return mcp.Tool{
		Name:        cfg.Name,
		Description: cfg.Description,
		InputSchema: schema,
	}
}

func newResource(cfg ResourceConfig) mcp.Resource {
	name := cfg.Name
	if name == "" {
		name = cfg.URI
	}
	mimeType := cfg.MIMEType
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return mcp.NewResource(cfg.URI, name,
		mcp.WithResourceDescription(cfg.Description),
		mcp.WithMIMEType(mimeType),
	)
}

func newPrompt(cfg PromptConfig) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(cfg.Description)}
	for _, arg := range cfg.Arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(arg.Description)}
		if arg.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(arg.Name, argOpts...))
	}
	return mcp.NewPrompt(cfg.Name, opts...)
}

// createToolHandler creates an MCP tool handler function for the given tool name
func (s *Server) createToolHandler(toolName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.RLock()
		handler, exists := s.tools[toolName]
		s.mu.RUnlock()
		if !exists {
			return mcp.NewToolResultError(fmt.Sprintf("tool %s not found", toolName)), nil
		}

		result, err := handler.HandleCall(ctx, request.GetArguments())
		if err != nil {
			var toolErr *ToolError
			if errors.As(err, &toolErr) {
				return mcp.NewToolResultError(toolErr.Message), nil
			}
			return nil, err
		}

		switch result.(type) {
		case nil:
			return mcp.NewToolResultText(""), nil
		case map[string]interface{}, []interface{}:
			if jsonBytes, err := json.Marshal(result); err == nil {
				return mcp.NewToolResultText(string(jsonBytes)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("%v", result)), nil
		default:
			return mcp.NewToolResultText(fmt.Sprintf("%v", result)), nil
		}
	}
}

func (s *Server) createResourceHandler(uri string) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s.mu.RLock()
		res, exists := s.resources[uri]
		s.mu.RUnlock()
		if !exists {
			return nil, fmt.Errorf("resource %s not found", uri)
		}

		mimeType := res.MIMEType
		if mimeType == "" {
			mimeType = "text/plain"
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: res.URI, MIMEType: mimeType, Text: res.Text},
		}, nil
	}
}

func (s *Server) createPromptHandler(name string) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		s.mu.RLock()
		prompt, exists := s.prompts[name]
		s.mu.RUnlock()
		if !exists {
			return nil, fmt.Errorf("prompt %s not found", name)
		}

		args := make(map[string]interface{}, len(prompt.Arguments))
		for _, arg := range prompt.Arguments {
			value, ok := request.Params.Arguments[arg.Name]
			if !ok && arg.Required {
				return nil, fmt.Errorf("missing required argument %q for prompt %s", arg.Name, name)
			}
			args[arg.Name] = value
		}
		for k, v := range request.Params.Arguments {
			args[k] = v
		}

		messages := make([]mcp.PromptMessage, 0, len(prompt.Messages))
		for i, msg := range prompt.Messages {
			text, err := s.templateEngine.Render(fmt.Sprintf("%s[%d]", name, i), msg.Text, args)
			if err != nil {
				return nil, err
			}
			role := mcp.RoleUser
			if strings.EqualFold(msg.Role, string(mcp.RoleAssistant)) {
				role = mcp.RoleAssistant
			}
			messages = append(messages, mcp.PromptMessage{Role: role, Content: mcp.NewTextContent(text)})
		}

		return &mcp.GetPromptResult{
			Description: prompt.Description,
			Messages:    messages,
		}, nil
	}
}

// Serve runs the provider over stdin/stdout until ctx is cancelled or
// stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	logging.Info("MockProvider", "Starting mock provider '%s' on stdio transport", s.name)
	return server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}
