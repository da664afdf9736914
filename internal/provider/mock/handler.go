package mock

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/giantswarm/sleuth/internal/template"
	"github.com/giantswarm/sleuth/pkg/logging"
)

// ToolError is returned by HandleCall when the selected response is a
// configured error. The server reports it as a tool error result.
type ToolError struct {
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

// ToolHandler handles mock tool calls with configurable responses
type ToolHandler struct {
	config         ToolConfig
	templateEngine *template.Engine
}

// NewToolHandler creates a new mock tool handler
func NewToolHandler(config ToolConfig, templateEngine *template.Engine) *ToolHandler {
	return &ToolHandler{
		config:         config,
		templateEngine: templateEngine,
	}
}

// HandleCall processes a tool call and returns the configured response
func (h *ToolHandler) HandleCall(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	logging.Debug("MockProvider", "Tool '%s' called with args: %v", h.config.Name, args)

	mergedArgs := h.mergeWithDefaults(args)

	var selectedResponse *ToolResponse
	for i := range h.config.Responses {
		if h.matchesCondition(h.config.Responses[i].Condition, mergedArgs) {
			selectedResponse = &h.config.Responses[i]
			break
		}
	}

	// If no specific response matched, use the first one as fallback
	if selectedResponse == nil && len(h.config.Responses) > 0 {
		selectedResponse = &h.config.Responses[0]
	}

	if selectedResponse == nil {
		return nil, fmt.Errorf("no response configured for tool %s", h.config.Name)
	}

	if selectedResponse.Delay != "" {
		duration, err := time.ParseDuration(selectedResponse.Delay)
		if err != nil {
			return nil, fmt.Errorf("invalid delay %q for tool %s: %w", selectedResponse.Delay, h.config.Name, err)
		}
		logging.Debug("MockProvider", "Simulating delay of %s for tool '%s'", duration, h.config.Name)
		timer := time.NewTimer(duration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if selectedResponse.Error != "" {
		errorMessage, err := h.templateEngine.Replace(selectedResponse.Error, mergedArgs)
		if err != nil {
			return nil, fmt.Errorf("failed to render error message: %w", err)
		}
		return nil, &ToolError{Message: fmt.Sprintf("%v", errorMessage)}
	}

	renderedResponse, err := h.templateEngine.Replace(selectedResponse.Response, mergedArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to render response: %w", err)
	}

	return renderedResponse, nil
}

// mergeWithDefaults merges provided args with default values from input schema
func (h *ToolHandler) mergeWithDefaults(args map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})

	if properties, ok := h.config.InputSchema["properties"].(map[string]interface{}); ok {
		for propName, propDef := range properties {
			if propDefMap, ok := propDef.(map[string]interface{}); ok {
				if defaultValue, hasDefault := propDefMap["default"]; hasDefault {
					merged[propName] = defaultValue
				}
			}
		}
	}

	for key, value := range args {
		merged[key] = value
	}

	return merged
}

// matchesCondition checks if the given args match the response condition
func (h *ToolHandler) matchesCondition(condition map[string]interface{}, args map[string]interface{}) bool {
	for key, expectedValue := range condition {
		actualValue, exists := args[key]
		if !exists || !valuesEqual(expectedValue, actualValue) {
			return false
		}
	}
	return true
}

// valuesEqual compares loosely so YAML ints match JSON float64 arguments.
func valuesEqual(expected, actual interface{}) bool {
	if reflect.DeepEqual(expected, actual) {
		return true
	}
	return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
}
