package config

import (
	"fmt"
	"strings"

	"github.com/giantswarm/sleuth/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// Validate checks the whole configuration and returns every problem found.
// The LLM API key is not checked here: commands that need no model can run
// without one.
func (c Config) Validate() error {
	var errs ValidationErrors

	addIf := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}

	transport := c.Provider.Transport
	if transport == "" {
		transport = TransportStdio
	}
	addIf(ValidateOneOf("provider.transport", transport, []string{TransportStdio, TransportSSE, TransportStreamableHTTP}))
	switch transport {
	case TransportStdio:
		if strings.TrimSpace(c.Provider.Command) == "" {
			errs.Add("provider.command", "is required for stdio transport")
		}
	case TransportSSE, TransportStreamableHTTP:
		if strings.TrimSpace(c.Provider.URL) == "" {
			errs.Add("provider.url", fmt.Sprintf("is required for %s transport", transport))
		}
	}
	if c.Provider.InitTimeout < 0 {
		errs.Add("provider.initTimeout", "must not be negative", c.Provider.InitTimeout)
	}

	addIf(ValidateOneOf("llm.provider", c.LLM.Provider, []string{LLMProviderAnthropic, LLMProviderOpenAI}))
	if c.LLM.MaxTokens < 0 {
		errs.Add("llm.maxTokens", "must not be negative", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs.Add("llm.temperature", "must be between 0 and 2", c.LLM.Temperature)
	}

	if c.Execution.StepTimeout <= 0 {
		errs.Add("execution.stepTimeout", "must be positive", c.Execution.StepTimeout)
	}

	addIf(ValidateOneOf("store.driver", c.Store.Driver, []string{StoreDriverSQLite, StoreDriverFile}))

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add("logging.level", err.Error(), c.Logging.Level)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
