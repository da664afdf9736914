package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Replace(t *testing.T) {
	engine := New()
	ctx := map[string]interface{}{
		"query": "quantum computing",
		"limit": 5,
	}

	tests := []struct {
		name     string
		input    interface{}
		expected interface{}
	}{
		{
			name:     "plain string",
			input:    "no templates here",
			expected: "no templates here",
		},
		{
			name:     "simple variable",
			input:    "Results for {{ .query }}",
			expected: "Results for quantum computing",
		},
		{
			name:     "sprig function",
			input:    "{{ .query | upper }} ({{ .limit }})",
			expected: "QUANTUM COMPUTING (5)",
		},
		{
			name:     "sprig default",
			input:    `{{ .query | default "none" }}`,
			expected: "quantum computing",
		},
		{
			name: "nested map and slice",
			input: map[string]interface{}{
				"title": "{{ .query | title }}",
				"items": []interface{}{"{{ .limit }}", 3},
			},
			expected: map[string]interface{}{
				"title": "Quantum Computing",
				"items": []interface{}{"5", 3},
			},
		},
		{
			name:     "non templatable value",
			input:    42,
			expected: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Replace(tt.input, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEngine_ReplaceMissingVariable(t *testing.T) {
	engine := New()

	_, err := engine.Replace(map[string]interface{}{"msg": "{{ .missing }}"}, map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error in key 'msg'")
}

func TestEngine_RenderParseError(t *testing.T) {
	_, err := New().Render("broken", "{{ .query ", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template broken")
}

func TestMergeContexts(t *testing.T) {
	merged := MergeContexts(
		map[string]interface{}{"a": 1, "b": 2},
		map[string]interface{}{"b": 3},
		nil,
	)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3}, merged)
}
