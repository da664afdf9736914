package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrNotConnected is wrapped into an api.ConnectionError whenever an operation
// is attempted on a session that has not been initialized or has been closed.
var ErrNotConnected = errors.New("session not initialized")

// protocolVersion is the MCP protocol version announced during the handshake.
const protocolVersion = "2024-11-05"

// Session is one connection to a capability provider.
// All transport types (stdio, SSE, streamable-http, in-process) implement it.
type Session interface {
	capability.Provider
	execution.Invoker

	// Initialize establishes the connection and performs the protocol handshake.
	Initialize(ctx context.Context) error
	// Close shuts the connection down. Closing twice is a no-op.
	Close() error
	// Ping checks that the provider is responsive.
	Ping(ctx context.Context) error
	// OnCapabilitiesChanged registers fn to be called when the provider announces
	// that its tool, resource or prompt list changed.
	OnCapabilitiesChanged(fn func(kind capability.Kind))
}

// Compile-time interface compliance checks
var (
	_ Session = (*StdioSession)(nil)
	_ Session = (*SSESession)(nil)
	_ Session = (*StreamableHTTPSession)(nil)
	_ Session = (*InProcessSession)(nil)
)

// baseSession implements the protocol operations shared by every transport.
type baseSession struct {
	name      string
	client    *client.Client
	mu        sync.RWMutex
	connected bool

	listenersMu sync.Mutex
	listeners   []func(kind capability.Kind)
}

// Name identifies the provider in logs and errors.
func (b *baseSession) Name() string {
	return b.name
}

// Connected reports whether the handshake completed and the session is open.
func (b *baseSession) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected && b.client != nil
}

// checkConnected must be called with at least a read lock on mu.
func (b *baseSession) checkConnected() error {
	if !b.connected || b.client == nil {
		return api.NewConnectionError(b.name, ErrNotConnected)
	}
	return nil
}

// handshake runs the MCP initialize exchange on c and marks the session
// connected. The caller must hold the write lock on mu.
func (b *baseSession) handshake(ctx context.Context, c *client.Client) error {
	initResult, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "sleuth",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		if closeErr := c.Close(); closeErr != nil {
			logging.Debug("Provider", "Error closing failed client for %s: %v", b.name, closeErr)
		}
		return api.NewConnectionError(b.name, fmt.Errorf("failed to initialize MCP protocol: %w", err))
	}

	c.OnNotification(b.handleNotification)

	b.client = c
	b.connected = true

	logging.Info("Provider", "Connected to %s (server %s %s)", b.name, initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	if initResult.Capabilities.Resources == nil {
		logging.Debug("Provider", "Server %s does not announce resources", b.name)
	}
	if initResult.Capabilities.Prompts == nil {
		logging.Debug("Provider", "Server %s does not announce prompts", b.name)
	}
	return nil
}

func (b *baseSession) handleNotification(notification mcp.JSONRPCNotification) {
	var kind capability.Kind
	switch notification.Method {
	case "notifications/tools/list_changed":
		kind = capability.KindTool
	case "notifications/resources/list_changed":
		kind = capability.KindResource
	case "notifications/prompts/list_changed":
		kind = capability.KindPrompt
	default:
		return
	}

	logging.Debug("Provider", "%s announced %s list change", b.name, kind)

	b.listenersMu.Lock()
	listeners := append([]func(capability.Kind){}, b.listeners...)
	b.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(kind)
	}
}

// OnCapabilitiesChanged registers a listener for list_changed notifications.
func (b *baseSession) OnCapabilitiesChanged(fn func(kind capability.Kind)) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Close cleanly shuts down the session.
func (b *baseSession) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected || b.client == nil {
		return nil
	}

	err := b.client.Close()
	b.connected = false
	b.client = nil

	return err
}

// classify converts transport failures that mean the provider is gone into
// connection errors. Everything else is returned wrapped with op.
func (b *baseSession) classify(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
		return api.NewConnectionError(b.name, fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// ListTools returns all available tools from the provider.
func (b *baseSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, b.classify("list tools", err)
	}
	return result.Tools, nil
}

// ListResources returns all available resources from the provider.
func (b *baseSession) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, b.classify("list resources", err)
	}
	return result.Resources, nil
}

// ListPrompts returns all available prompts from the provider.
func (b *baseSession) ListPrompts(ctx context.Context) ([]mcp.Prompt, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, b.classify("list prompts", err)
	}
	return result.Prompts, nil
}

// CallTool executes a tool and returns its result.
func (b *baseSession) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, b.classify("call tool", err)
	}
	return result, nil
}

// ReadResource reads the resource at uri.
func (b *baseSession) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ReadResource(ctx, mcp.ReadResourceRequest{
		Params: struct {
			URI       string         `json:"uri"`
			Arguments map[string]any `json:"arguments,omitempty"`
		}{
			URI: uri,
		},
	})
	if err != nil {
		return nil, b.classify("read resource", err)
	}
	return result, nil
}

// GetPrompt renders a prompt. MCP prompt arguments are strings, so non-string
// values are formatted with %v.
func (b *baseSession) GetPrompt(ctx context.Context, name string, args map[string]interface{}) (*mcp.GetPromptResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	stringArgs := make(map[string]string, len(args))
	for k, v := range args {
		if str, ok := v.(string); ok {
			stringArgs[k] = str
		} else {
			stringArgs[k] = fmt.Sprintf("%v", v)
		}
	}

	result, err := b.client.GetPrompt(ctx, mcp.GetPromptRequest{
		Params: struct {
			Name      string            `json:"name"`
			Arguments map[string]string `json:"arguments,omitempty"`
		}{
			Name:      name,
			Arguments: stringArgs,
		},
	})
	if err != nil {
		return nil, b.classify("get prompt", err)
	}
	return result, nil
}

// Ping checks if the provider is responsive.
func (b *baseSession) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return err
	}

	if err := b.client.Ping(ctx); err != nil {
		return b.classify("ping", err)
	}
	return nil
}
