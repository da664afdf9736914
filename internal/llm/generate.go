package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/tmc/langchaingo/llms"
)

// ErrNoToolCall is returned when the model neither called the expected tool
// nor answered with a JSON object.
var ErrNoToolCall = errors.New("model did not return a structured response")

// callTool sends the system and user prompts offering a single tool and
// returns the JSON arguments of the tool call. A plain JSON answer in the
// message content is accepted as well.
func callTool(ctx context.Context, model llms.Model, system, user string, tool llms.Tool, opts []llms.CallOption) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	callOpts := append([]llms.CallOption{llms.WithTools([]llms.Tool{tool})}, opts...)
	resp, err := model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	choice := resp.Choices[0]
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall != nil && tc.FunctionCall.Name == tool.Function.Name {
			return tc.FunctionCall.Arguments, nil
		}
	}

	if obj, ok := extractJSONObject(choice.Content); ok {
		logging.Debug("LLM", "Model answered %s without a tool call, using JSON from content", tool.Function.Name)
		return obj, nil
	}

	return "", ErrNoToolCall
}

// extractJSONObject returns the outermost {...} span of s, which tolerates
// code fences and prose around the object.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
