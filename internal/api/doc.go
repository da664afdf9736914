// Package api holds the error taxonomy shared by the capability registry, the
// step executor, the plan engine and the research collaborators.
//
// Step-local errors (CapabilityNotFoundError, MissingParameterError,
// TimeoutError, UnknownCapabilityKindError) are recorded inside step outcomes and
// never abort a run. ConnectionError is the only error that ends a run early.
// PlannerError and AnalyzerError trigger the degraded plan and analysis paths.
//
// Every error type has an IsXxx helper based on errors.As so wrapped errors are
// classified correctly:
//
//	if api.IsConnectionError(err) {
//	    // reconnect the provider session
//	}
package api
