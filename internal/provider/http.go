package provider

import (
	"context"
	"fmt"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// StreamableHTTPSession connects to a remote provider over streamable HTTP.
type StreamableHTTPSession struct {
	baseSession
	url     string
	headers map[string]string
}

// NewStreamableHTTPSession creates a streamable HTTP session with optional headers.
func NewStreamableHTTPSession(url string, headers map[string]string) *StreamableHTTPSession {
	return &StreamableHTTPSession{
		baseSession: baseSession{name: url},
		url:         url,
		headers:     headers,
	}
}

// Initialize starts the transport and performs the protocol handshake.
func (s *StreamableHTTPSession) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	var opts []transport.StreamableHTTPCOption
	if len(s.headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(s.headers))
		logging.Debug("StreamableHTTPSession", "Configured %d custom headers", len(s.headers))
	}

	mcpClient, err := client.NewStreamableHttpClient(s.url, opts...)
	if err != nil {
		return api.NewConnectionError(s.name, fmt.Errorf("failed to create streamable-http client: %w", err))
	}
	if err := mcpClient.Start(ctx); err != nil {
		return api.NewConnectionError(s.name, fmt.Errorf("failed to start streamable-http transport: %w", err))
	}

	return s.handshake(ctx, mcpClient)
}

// SSESession connects to a remote provider over server-sent events.
type SSESession struct {
	baseSession
	url     string
	headers map[string]string
}

// NewSSESession creates an SSE session with optional headers.
func NewSSESession(url string, headers map[string]string) *SSESession {
	return &SSESession{
		baseSession: baseSession{name: url},
		url:         url,
		headers:     headers,
	}
}

// Initialize starts the SSE stream and performs the protocol handshake.
func (s *SSESession) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	var opts []transport.ClientOption
	if len(s.headers) > 0 {
		opts = append(opts, transport.WithHeaders(s.headers))
	}

	mcpClient, err := client.NewSSEMCPClient(s.url, opts...)
	if err != nil {
		return api.NewConnectionError(s.name, fmt.Errorf("failed to create SSE client: %w", err))
	}
	if err := mcpClient.Start(ctx); err != nil {
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("SSESession", "Error closing SSE client for %s: %v", s.url, closeErr)
		}
		return api.NewConnectionError(s.name, fmt.Errorf("failed to start SSE transport: %w", err))
	}

	return s.handshake(ctx, mcpClient)
}
