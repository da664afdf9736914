package session

import (
	"time"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/plan"
)

// Analysis is the structured assessment of one plan run.
type Analysis struct {
	Findings        []string `json:"findings"`
	QualityScore    float64  `json:"qualityScore"`
	Gaps            []string `json:"gaps,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	// SuccessRate is the "successes/steps" ratio of the analyzed run.
	SuccessRate string `json:"successRate,omitempty"`
	// Degraded marks an analysis produced without the analyzer.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Record is one research query persisted for a session.
type Record struct {
	ID        string                `json:"id"`
	SessionID string                `json:"sessionId"`
	Query     string                `json:"query"`
	Plan      *plan.Plan            `json:"plan"`
	Result    *execution.PlanResult `json:"result"`
	Analysis  *Analysis             `json:"analysis"`
	CreatedAt time.Time             `json:"createdAt"`
}

// Succeeded reports whether the recorded run had no failed step.
func (r Record) Succeeded() bool {
	return r.Result != nil && r.Result.FailureCount == 0
}

// Info is the persisted header of a session.
type Info struct {
	ID           string                  `json:"id"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
	Capabilities []capability.Capability `json:"capabilities,omitempty"`
	Stats        Stats                   `json:"stats"`
}
