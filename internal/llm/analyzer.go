package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/session"
	"github.com/giantswarm/sleuth/internal/template"

	"github.com/tmc/langchaingo/llms"
)

// Analyzer asks a language model to assess a plan run through the
// submit_analysis tool.
type Analyzer struct {
	model     llms.Model
	templates *template.Engine
	options   []llms.CallOption
}

// NewAnalyzer creates an analyzer backed by model.
func NewAnalyzer(model llms.Model, opts ...llms.CallOption) *Analyzer {
	return &Analyzer{
		model:     model,
		templates: template.New(),
		options:   opts,
	}
}

type promptStep struct {
	Step     string
	Status   execution.Status
	Fallback string
	Error    string
	Data     string
}

type analysisArgs struct {
	Findings        []string `json:"findings"`
	QualityScore    float64  `json:"qualityScore"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

// Analyze returns the model's assessment of result. Every error is an
// *api.AnalyzerError.
func (a *Analyzer) Analyze(ctx context.Context, goal string, result *execution.PlanResult) (*session.Analysis, error) {
	if result == nil {
		return nil, api.NewAnalyzerError(fmt.Errorf("no result to analyze"))
	}

	data := struct {
		Goal         string
		SuccessCount int
		Aborted      string
		Cancelled    bool
		Steps        []promptStep
	}{
		Goal:         goal,
		SuccessCount: result.SuccessCount,
		Aborted:      result.Aborted,
		Cancelled:    result.Cancelled,
	}
	for _, o := range result.Outcomes {
		step := promptStep{
			Step:   o.Step.String(),
			Status: o.Status,
			Error:  o.Error,
			Data:   formatData(o.Result()),
		}
		if o.FallbackStep != nil {
			step.Fallback = o.FallbackStep.String()
			if o.FallbackError != "" {
				step.Fallback += " (failed: " + o.FallbackError + ")"
			}
		}
		data.Steps = append(data.Steps, step)
	}

	userPrompt, err := a.templates.Render("analyzer", analyzerUserPrompt, data)
	if err != nil {
		return nil, api.NewAnalyzerError(err)
	}

	raw, err := callTool(ctx, a.model, analyzerSystemPrompt, userPrompt, analysisTool(), a.options)
	if err != nil {
		return nil, api.NewAnalyzerError(err)
	}

	var args analysisArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, api.NewAnalyzerError(fmt.Errorf("failed to parse %s arguments: %w", submitAnalysisTool, err))
	}

	score := args.QualityScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return &session.Analysis{
		Findings:        args.Findings,
		QualityScore:    score,
		Gaps:            args.Gaps,
		Recommendations: args.Recommendations,
		SuccessRate:     session.FormatRate(result.SuccessCount, len(result.Outcomes)),
	}, nil
}

// formatData renders step data as text for the analysis prompt.
func formatData(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	case []execution.PromptMessage:
		lines := make([]string, 0, len(v))
		for _, m := range v {
			lines = append(lines, m.Role+": "+m.Text)
		}
		return strings.Join(lines, "\n")
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}
