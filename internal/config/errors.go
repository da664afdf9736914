package config

import "fmt"

// ConfigurationError describes a failure to load the configuration file.
type ConfigurationError struct {
	FilePath  string `json:"filePath"`
	ErrorType string `json:"errorType"` // io, parse or validation
	Message   string `json:"message"`
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s error in %s: %s", ce.ErrorType, ce.FilePath, ce.Message)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(filePath, errorType, message string) ConfigurationError {
	return ConfigurationError{
		FilePath:  filePath,
		ErrorType: errorType,
		Message:   message,
	}
}
