// Package research ties the capability registry, the plan execution engine
// and the planner and analyzer together into research sessions.
//
// A Service owns the current session. Search plans a query, runs the plan,
// analyzes the result and appends the record to the store before updating the
// session statistics. A failing planner or analyzer never fails a query:
// DegeneratePlan and RawAnalysis stand in for them.
package research
