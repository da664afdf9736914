package research

import (
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/internal/session"
)

const (
	degenerateOutcome         = "Basic search results"
	rawAnalysisFinding        = "Analysis failed due to error"
	rawAnalysisRecommendation = "Retry with simplified analysis"
)

// DegeneratePlan is the plan of last resort used when the planner fails: a
// single step against the first capability of set, passing the goal as the
// "query" parameter. Resource steps also receive the discovered URI.
// It returns an empty plan when set has no capabilities.
func DegeneratePlan(goal string, set *capability.Set, err error) *plan.Plan {
	metadata := map[string]any{"fallback": true}
	if err != nil {
		metadata["error"] = err.Error()
	}

	p := &plan.Plan{
		Steps:    []plan.Step{},
		Metadata: metadata,
	}

	first, ok := set.First()
	if !ok {
		return p
	}

	params := map[string]any{"query": goal}
	if uri := first.ResourceURI(); uri != "" {
		params["uri"] = uri
	}

	p.Steps = append(p.Steps, plan.Step{
		Kind:       first.Kind,
		Capability: first.Name,
		Parameters: params,
	})
	p.ExpectedOutcomes = []string{degenerateOutcome}
	return p
}

// RawAnalysis is the analysis used when the analyzer fails. It only reports
// the step success ratio of result.
func RawAnalysis(result *execution.PlanResult, err error) *session.Analysis {
	analysis := &session.Analysis{
		Findings:        []string{rawAnalysisFinding},
		Recommendations: []string{rawAnalysisRecommendation},
		Degraded:        true,
	}
	if result != nil {
		analysis.SuccessRate = session.FormatRate(result.SuccessCount, len(result.Outcomes))
	} else {
		analysis.SuccessRate = session.FormatRate(0, 0)
	}
	if err != nil {
		analysis.Error = err.Error()
	}
	return analysis
}
