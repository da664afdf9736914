package capability

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Key identifies a capability inside a Set.
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// Capability is a single tool, resource or prompt reported by a provider.
// Values are immutable once discovered; callers must not modify the maps.
type Capability struct {
	Kind        Kind           `json:"kind" yaml:"kind"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	// Schema is the declared parameter shape. It is surfaced for planners and
	// diagnostics; enforcing it is the provider's job.
	Schema map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	// Metadata is the raw descriptor as reported by the provider.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Key returns the (kind, name) key of the capability.
func (c Capability) Key() Key {
	return Key{Kind: c.Kind, Name: c.Name}
}

// FromTool converts an MCP tool descriptor.
func FromTool(tool mcp.Tool) Capability {
	raw := toMap(tool)
	schema, _ := raw["inputSchema"].(map[string]any)
	return Capability{
		Kind:        KindTool,
		Name:        tool.Name,
		Description: tool.Description,
		Schema:      schema,
		Metadata:    raw,
	}
}

// FromResource converts an MCP resource descriptor. Resources are addressed by
// URI, so the schema advertises the required "uri" parameter and its value.
func FromResource(resource mcp.Resource) Capability {
	name := resource.Name
	if name == "" {
		name = resource.URI
	}
	return Capability{
		Kind:        KindResource,
		Name:        name,
		Description: resource.Description,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"uri": map[string]any{"type": "string", "default": resource.URI},
			},
			"required": []any{"uri"},
		},
		Metadata: toMap(resource),
	}
}

// FromPrompt converts an MCP prompt descriptor. Prompt arguments become a flat
// object schema of string properties.
func FromPrompt(prompt mcp.Prompt) Capability {
	properties := make(map[string]any, len(prompt.Arguments))
	required := []any{}
	for _, arg := range prompt.Arguments {
		properties[arg.Name] = map[string]any{
			"type":        "string",
			"description": arg.Description,
		}
		if arg.Required {
			required = append(required, arg.Name)
		}
	}
	return Capability{
		Kind:        KindPrompt,
		Name:        prompt.Name,
		Description: prompt.Description,
		Schema: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
		Metadata: toMap(prompt),
	}
}

// ResourceURI returns the URI a resource capability was discovered with.
func (c Capability) ResourceURI() string {
	if c.Kind != KindResource {
		return ""
	}
	uri, _ := c.Metadata["uri"].(string)
	return uri
}

func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
