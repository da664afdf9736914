package capability

import "strings"

// Kind is the closed set of capability kinds an MCP provider can expose.
type Kind string

const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{KindTool, KindResource, KindPrompt}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTool, KindResource, KindPrompt:
		return true
	default:
		return false
	}
}

// Plural returns the plural form used in listings ("tools", "resources", "prompts").
func (k Kind) Plural() string {
	return string(k) + "s"
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind normalizes a kind name produced by a planner or a plan file.
// Case and a trailing plural "s" are ignored. Unrecognized names are returned
// unchanged so that the executor can reject them explicitly.
func ParseKind(name string) Kind {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.TrimSuffix(normalized, "s")
	k := Kind(normalized)
	if k.Valid() {
		return k
	}
	return Kind(name)
}
