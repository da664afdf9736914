package execution

import (
	"time"

	"github.com/giantswarm/sleuth/internal/plan"
)

// Status is the terminal state of one step.
type Status string

const (
	StatusCompleted             Status = "completed"
	StatusFailed                Status = "failed"
	StatusCompletedWithFallback Status = "completed_with_fallback"
)

// Succeeded reports whether the status counts towards the success count.
func (s Status) Succeeded() bool {
	return s == StatusCompleted || s == StatusCompletedWithFallback
}

// StepOutcome records what happened to one plan step.
//
// Data and Error are mutually exclusive. When the primary call failed, Error
// keeps the primary cause verbatim and the fallback attempt is recorded in
// FallbackStep, FallbackData and FallbackError.
type StepOutcome struct {
	Step          plan.Step  `json:"step"`
	Status        Status     `json:"status"`
	Data          any        `json:"data,omitempty"`
	Error         string     `json:"error,omitempty"`
	FallbackStep  *plan.Step `json:"fallbackStep,omitempty"`
	FallbackData  any        `json:"fallbackData,omitempty"`
	FallbackError string     `json:"fallbackError,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       time.Time  `json:"endedAt"`
}

// Result returns the data that satisfied the step: the primary data, or the
// fallback data when the step completed with a fallback.
func (o StepOutcome) Result() any {
	if o.Status == StatusCompletedWithFallback {
		return o.FallbackData
	}
	return o.Data
}

// Duration returns how long the step (including any fallback) took.
func (o StepOutcome) Duration() time.Duration {
	return o.EndedAt.Sub(o.StartedAt)
}

// PlanResult is the aggregate record of one plan run.
//
// SuccessCount + FailureCount always equals len(Outcomes). Outcomes appear in
// the order of the plan's steps and are never modified once appended.
type PlanResult struct {
	ID           string        `json:"id"`
	Outcomes     []StepOutcome `json:"outcomes"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	StartedAt    time.Time     `json:"startedAt"`
	EndedAt      time.Time     `json:"endedAt"`
	// Cancelled is set when the run stopped early because its context ended.
	Cancelled bool `json:"cancelled,omitempty"`
	// Aborted holds the infrastructure fault that stopped the run early, if any.
	Aborted string `json:"aborted,omitempty"`
}

func (r *PlanResult) append(o StepOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Status.Succeeded() {
		r.SuccessCount++
	} else {
		r.FailureCount++
	}
}

// Complete reports whether the run executed every step of the plan.
func (r *PlanResult) Complete() bool {
	return !r.Cancelled && r.Aborted == ""
}

// Succeeded reports whether the run recorded no failed steps.
func (r *PlanResult) Succeeded() bool {
	return r.FailureCount == 0
}

// Duration returns the wall-clock duration of the run.
func (r *PlanResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Errors returns every error message recorded in the run, primary and fallback,
// in step order.
func (r *PlanResult) Errors() []string {
	var errs []string
	for _, o := range r.Outcomes {
		if o.Error != "" {
			errs = append(errs, o.Error)
		}
		if o.FallbackError != "" {
			errs = append(errs, o.FallbackError)
		}
	}
	if r.Aborted != "" {
		errs = append(errs, r.Aborted)
	}
	return errs
}
