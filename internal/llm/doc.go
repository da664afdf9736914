// Package llm implements the research planner and analyzer on top of a
// langchaingo chat model.
//
// Both ask the model for a single tool call (propose_plan or
// submit_analysis) and decode its JSON arguments. Prompt text is rendered
// with the template engine. Failures are returned as api.PlannerError or
// api.AnalyzerError so callers can degrade to their fallback plan or
// analysis.
package llm
