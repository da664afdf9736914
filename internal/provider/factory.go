package provider

import (
	"fmt"
	"strings"
)

// Transport names accepted in provider configuration.
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// Config describes how to reach a capability provider.
type Config struct {
	Transport string            `yaml:"transport" json:"transport"`
	Command   string            `yaml:"command,omitempty" json:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	URL       string            `yaml:"url,omitempty" json:"url,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Validate checks that the fields required by the transport are present.
func (c Config) Validate() error {
	switch c.transport() {
	case TransportStdio:
		if strings.TrimSpace(c.Command) == "" {
			return fmt.Errorf("command is required for %s transport", TransportStdio)
		}
	case TransportSSE, TransportStreamableHTTP:
		if strings.TrimSpace(c.URL) == "" {
			return fmt.Errorf("url is required for %s transport", c.transport())
		}
	default:
		return fmt.Errorf("unsupported transport %q (supported: %s, %s, %s)",
			c.Transport, TransportStdio, TransportSSE, TransportStreamableHTTP)
	}
	return nil
}

// transport defaults to stdio when only a command is set.
func (c Config) transport() string {
	t := strings.ToLower(strings.TrimSpace(c.Transport))
	if t == "" && c.Command != "" {
		return TransportStdio
	}
	return t
}

// NewSession creates an uninitialized session for cfg.
func NewSession(cfg Config) (Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.transport() {
	case TransportSSE:
		return NewSSESession(cfg.URL, cfg.Headers), nil
	case TransportStreamableHTTP:
		return NewStreamableHTTPSession(cfg.URL, cfg.Headers), nil
	default:
		return NewStdioSession(cfg.Command, cfg.Args, cfg.Env), nil
	}
}
