package llm

import "github.com/tmc/langchaingo/llms"

const (
	proposePlanTool    = "propose_plan"
	submitAnalysisTool = "submit_analysis"
)

func stepSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{
				"type": "string",
				"enum": []string{"tool", "resource", "prompt"},
			},
			"capability": map[string]any{
				"type":        "string",
				"description": "Capability name exactly as listed.",
			},
			"parameters": map[string]any{
				"type":        "object",
				"description": "Arguments for the capability. Resource steps must include uri.",
			},
		},
		"required": []string{"kind", "capability", "parameters"},
	}
}

func planTool() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        proposePlanTool,
			Description: "Submit a research plan made of capability calls.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{
						"type":  "array",
						"items": stepSchema(),
					},
					"fallbackSteps": map[string]any{
						"type":  "array",
						"items": stepSchema(),
					},
					"expectedOutcomes": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []string{"steps"},
			},
		},
	}
}

func analysisTool() llms.Tool {
	stringList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        submitAnalysisTool,
			Description: "Submit the analysis of a research run.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"findings": stringList,
					"qualityScore": map[string]any{
						"type":    "number",
						"minimum": 0,
						"maximum": 1,
					},
					"gaps":            stringList,
					"recommendations": stringList,
				},
				"required": []string{"findings", "qualityScore"},
			},
		},
	}
}
