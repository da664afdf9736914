package plan

import (
	"fmt"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
)

// Step is one invocation of a single capability with concrete parameters.
// The referenced capability may no longer exist; the executor fails such steps.
type Step struct {
	Kind       capability.Kind `json:"kind"`
	Capability string          `json:"capability"`
	Parameters map[string]any  `json:"parameters,omitempty"`
	// Metadata carries planner annotations (for example "fallback": true).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Key returns the (kind, name) key the step refers to.
func (s Step) Key() capability.Key {
	return capability.Key{Kind: s.Kind, Name: s.Capability}
}

func (s Step) String() string {
	return s.Key().String()
}

// Param returns a parameter as a string, if present and non-empty.
func (s Step) Param(name string) (string, bool) {
	v, ok := s.Parameters[name]
	if !ok || v == nil {
		return "", false
	}
	str, ok := v.(string)
	if !ok {
		str = fmt.Sprintf("%v", v)
	}
	if str == "" {
		return "", false
	}
	return str, true
}

// Plan is an ordered list of steps, alternative steps to use when a step fails,
// and the outcomes the planner expects.
type Plan struct {
	Steps            []Step         `json:"steps"`
	FallbackSteps    []Step         `json:"fallbackSteps,omitempty"`
	ExpectedOutcomes []string       `json:"expectedOutcomes,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// IsEmpty reports whether the plan has no steps. An empty plan is valid.
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Steps) == 0
}

// Normalize canonicalizes kind names in place (see capability.ParseKind).
func (p *Plan) Normalize() {
	if p == nil {
		return
	}
	for i := range p.Steps {
		p.Steps[i].Kind = capability.ParseKind(string(p.Steps[i].Kind))
	}
	for i := range p.FallbackSteps {
		p.FallbackSteps[i].Kind = capability.ParseKind(string(p.FallbackSteps[i].Kind))
	}
}

// Validate checks every step and fallback step against set and returns one error
// per problem. Problems are diagnostics only: the plan still runs and the affected
// steps fail individually.
func (p *Plan) Validate(set *capability.Set) []error {
	if p == nil {
		return nil
	}

	var problems []error
	check := func(section string, i int, s Step) {
		if s.Capability == "" {
			problems = append(problems, fmt.Errorf("%s[%d]: capability name is empty", section, i))
			return
		}
		if !s.Kind.Valid() {
			problems = append(problems, fmt.Errorf("%s[%d]: %w", section, i, api.NewUnknownCapabilityKindError(string(s.Kind))))
			return
		}
		if _, ok := set.Lookup(s.Kind, s.Capability); !ok {
			problems = append(problems, fmt.Errorf("%s[%d]: %w", section, i, api.NewCapabilityNotFoundError(string(s.Kind), s.Capability)))
		}
		if s.Kind == capability.KindResource {
			if _, ok := s.Param("uri"); !ok {
				problems = append(problems, fmt.Errorf("%s[%d]: %w", section, i, api.NewMissingParameterError(s.Capability, "uri")))
			}
		}
	}

	for i, s := range p.Steps {
		check("steps", i, s)
	}
	for i, s := range p.FallbackSteps {
		check("fallbackSteps", i, s)
	}

	return problems
}
