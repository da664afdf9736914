package api

import (
	"errors"
	"fmt"
	"time"
)

// ConnectionError reports that the provider session cannot be used.
// It is fatal to the current run and is never retried internally.
type ConnectionError struct {
	// Provider identifies the session (command line or URL) for diagnostics.
	Provider string
	// Err is the underlying transport failure, if any.
	Err error
}

// Error implements the error interface for ConnectionError.
func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s is not connected", e.providerName())
	}
	return fmt.Sprintf("provider %s is not connected: %v", e.providerName(), e.Err)
}

// Unwrap returns the underlying transport error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) providerName() string {
	if e.Provider == "" {
		return "session"
	}
	return e.Provider
}

// NewConnectionError creates a ConnectionError for the given provider.
//
// Args:
//   - provider: a human readable identifier of the provider session
//   - err: the underlying cause, may be nil
//
// Returns:
//   - *ConnectionError: the wrapped error
func NewConnectionError(provider string, err error) *ConnectionError {
	return &ConnectionError{Provider: provider, Err: err}
}

// IsConnectionError checks if an error is or wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// CapabilityNotFoundError reports a step that references a capability the
// registry does not know about. The step fails and is eligible for fallback.
type CapabilityNotFoundError struct {
	Kind string
	Name string
}

// Error implements the error interface for CapabilityNotFoundError.
func (e *CapabilityNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// NewCapabilityNotFoundError creates a CapabilityNotFoundError.
func NewCapabilityNotFoundError(kind, name string) *CapabilityNotFoundError {
	return &CapabilityNotFoundError{Kind: kind, Name: name}
}

// IsCapabilityNotFound checks if an error is or wraps a CapabilityNotFoundError.
func IsCapabilityNotFound(err error) bool {
	var notFound *CapabilityNotFoundError
	return errors.As(err, &notFound)
}

// MissingParameterError reports a malformed step that lacks a required parameter.
type MissingParameterError struct {
	Capability string
	Parameter  string
}

// Error implements the error interface for MissingParameterError.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q for %s", e.Parameter, e.Capability)
}

// NewMissingParameterError creates a MissingParameterError.
func NewMissingParameterError(capability, parameter string) *MissingParameterError {
	return &MissingParameterError{Capability: capability, Parameter: parameter}
}

// IsMissingParameter checks if an error is or wraps a MissingParameterError.
func IsMissingParameter(err error) bool {
	var missing *MissingParameterError
	return errors.As(err, &missing)
}

// UnknownCapabilityKindError reports a step whose kind is outside the closed
// set of capability kinds. No fallback is attempted for such steps.
type UnknownCapabilityKindError struct {
	Kind string
}

// Error implements the error interface for UnknownCapabilityKindError.
func (e *UnknownCapabilityKindError) Error() string {
	return fmt.Sprintf("unknown capability kind %q", e.Kind)
}

// NewUnknownCapabilityKindError creates an UnknownCapabilityKindError.
func NewUnknownCapabilityKindError(kind string) *UnknownCapabilityKindError {
	return &UnknownCapabilityKindError{Kind: kind}
}

// IsUnknownCapabilityKind checks if an error is or wraps an UnknownCapabilityKindError.
func IsUnknownCapabilityKind(err error) bool {
	var unknown *UnknownCapabilityKindError
	return errors.As(err, &unknown)
}

// TimeoutError reports a provider call that exceeded the per-step timeout.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Timeout)
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, Timeout: timeout}
}

// IsTimeout checks if an error is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var timeout *TimeoutError
	return errors.As(err, &timeout)
}

// PlannerError reports that the planner could not produce a usable plan.
// Callers degrade to a single-step plan instead of propagating it.
type PlannerError struct {
	Goal string
	Err  error
}

// Error implements the error interface for PlannerError.
func (e *PlannerError) Error() string {
	return fmt.Sprintf("planning failed for %q: %v", e.Goal, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PlannerError) Unwrap() error {
	return e.Err
}

// NewPlannerError creates a PlannerError.
func NewPlannerError(goal string, err error) *PlannerError {
	return &PlannerError{Goal: goal, Err: err}
}

// IsPlannerError checks if an error is or wraps a PlannerError.
func IsPlannerError(err error) bool {
	var plannerErr *PlannerError
	return errors.As(err, &plannerErr)
}

// AnalyzerError reports that result analysis failed.
// Callers degrade to an analysis carrying only raw counts.
type AnalyzerError struct {
	Err error
}

// Error implements the error interface for AnalyzerError.
func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// NewAnalyzerError creates an AnalyzerError.
func NewAnalyzerError(err error) *AnalyzerError {
	return &AnalyzerError{Err: err}
}

// IsAnalyzerError checks if an error is or wraps an AnalyzerError.
func IsAnalyzerError(err error) bool {
	var analyzerErr *AnalyzerError
	return errors.As(err, &analyzerErr)
}

// NotFoundError represents a stored entity (session, record) that does not exist.
type NotFoundError struct {
	ResourceType string
	ResourceName string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// NewNotFoundError creates a NotFoundError.
//
// Example:
//
//	return api.NewNotFoundError("session", id)
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceName: resourceName}
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
