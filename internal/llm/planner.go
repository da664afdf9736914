package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/internal/template"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/tmc/langchaingo/llms"
)

// Planner asks a language model to build a plan through the propose_plan tool.
type Planner struct {
	model     llms.Model
	templates *template.Engine
	options   []llms.CallOption
}

// NewPlanner creates a planner backed by model.
func NewPlanner(model llms.Model, opts ...llms.CallOption) *Planner {
	return &Planner{
		model:     model,
		templates: template.New(),
		options:   opts,
	}
}

type promptCapability struct {
	Kind        capability.Kind
	Name        string
	Description string
	Parameters  []string
}

// Plan returns a plan whose steps all reference capabilities in set. Invalid
// fallback steps are dropped; an invalid step fails the whole plan.
// Every error is an *api.PlannerError.
func (p *Planner) Plan(ctx context.Context, goal string, set *capability.Set) (*plan.Plan, error) {
	caps := set.All()
	data := struct {
		Goal         string
		Capabilities []promptCapability
	}{Goal: goal}
	for _, c := range caps {
		data.Capabilities = append(data.Capabilities, promptCapability{
			Kind:        c.Kind,
			Name:        c.Name,
			Description: c.Description,
			Parameters:  describeParameters(c),
		})
	}

	userPrompt, err := p.templates.Render("planner", plannerUserPrompt, data)
	if err != nil {
		return nil, api.NewPlannerError(goal, err)
	}

	raw, err := callTool(ctx, p.model, plannerSystemPrompt, userPrompt, planTool(), p.options)
	if err != nil {
		return nil, api.NewPlannerError(goal, err)
	}

	var result plan.Plan
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, api.NewPlannerError(goal, fmt.Errorf("failed to parse %s arguments: %w", proposePlanTool, err))
	}
	result.Normalize()

	if problems := (&plan.Plan{Steps: result.Steps}).Validate(set); len(problems) > 0 {
		return nil, api.NewPlannerError(goal, fmt.Errorf("invalid plan: %w", errors.Join(problems...)))
	}

	fallbacks := result.FallbackSteps[:0]
	for _, fb := range result.FallbackSteps {
		if problems := (&plan.Plan{Steps: []plan.Step{fb}}).Validate(set); len(problems) > 0 {
			logging.Warn("Planner", "Dropping fallback step %s: %v", fb, errors.Join(problems...))
			continue
		}
		fallbacks = append(fallbacks, fb)
	}
	result.FallbackSteps = fallbacks

	logging.Debug("Planner", "Planned %d steps and %d fallback steps for %q", len(result.Steps), len(result.FallbackSteps), goal)
	return &result, nil
}

// describeParameters lists the schema properties of c, marking required ones.
func describeParameters(c capability.Capability) []string {
	props, _ := c.Schema["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}

	required := make(map[string]bool)
	switch req := c.Schema["required"].(type) {
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	case []string:
		for _, name := range req {
			required[name] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		entry := name
		if def, ok := props[name].(map[string]any); ok {
			if t, ok := def["type"].(string); ok {
				entry += " (" + t + ")"
			}
			if d, ok := def["default"]; ok {
				entry += fmt.Sprintf(" default %v", d)
			}
		}
		if required[name] {
			entry += " required"
		}
		out = append(out, entry)
	}
	return out
}
