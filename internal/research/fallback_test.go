package research

import (
	"errors"
	"testing"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegeneratePlan(t *testing.T) {
	plannerErr := errors.New("model unavailable")

	t.Run("uses first capability", func(t *testing.T) {
		set, err := capability.NewSet(
			capability.Capability{Kind: capability.KindPrompt, Name: "summarize"},
			capability.Capability{Kind: capability.KindTool, Name: "web_search"},
			capability.Capability{Kind: capability.KindTool, Name: "arxiv"},
		)
		require.NoError(t, err)

		p := DegeneratePlan("quantum computing", set, plannerErr)
		require.Len(t, p.Steps, 1)
		assert.Equal(t, capability.KindTool, p.Steps[0].Kind)
		assert.Equal(t, "arxiv", p.Steps[0].Capability)
		assert.Equal(t, map[string]any{"query": "quantum computing"}, p.Steps[0].Parameters)
		assert.Equal(t, []string{"Basic search results"}, p.ExpectedOutcomes)
		assert.Equal(t, true, p.Metadata["fallback"])
		assert.Equal(t, "model unavailable", p.Metadata["error"])
		assert.Empty(t, p.Validate(set))
	})

	t.Run("resource receives uri", func(t *testing.T) {
		set, err := capability.NewSet(capability.Capability{
			Kind:     capability.KindResource,
			Name:     "guide",
			Metadata: map[string]any{"uri": "docs://guide"},
		})
		require.NoError(t, err)

		p := DegeneratePlan("guide", set, plannerErr)
		require.Len(t, p.Steps, 1)
		assert.Equal(t, "docs://guide", p.Steps[0].Parameters["uri"])
		assert.Equal(t, "guide", p.Steps[0].Parameters["query"])
	})

	t.Run("no capabilities", func(t *testing.T) {
		p := DegeneratePlan("anything", capability.EmptySet(), plannerErr)
		assert.True(t, p.IsEmpty())
		assert.NotNil(t, p.Steps)
		assert.Empty(t, p.ExpectedOutcomes)
		assert.Equal(t, true, p.Metadata["fallback"])
	})

	t.Run("nil error", func(t *testing.T) {
		p := DegeneratePlan("anything", nil, nil)
		assert.True(t, p.IsEmpty())
		assert.NotContains(t, p.Metadata, "error")
	})
}

func TestRawAnalysis(t *testing.T) {
	result := &execution.PlanResult{
		Outcomes: []execution.StepOutcome{
			{Status: execution.StatusCompleted},
			{Status: execution.StatusFailed},
			{Status: execution.StatusCompletedWithFallback},
		},
		SuccessCount: 2,
		FailureCount: 1,
	}

	analysis := RawAnalysis(result, errors.New("rate limited"))
	assert.Equal(t, "2/3", analysis.SuccessRate)
	assert.Equal(t, []string{"Analysis failed due to error"}, analysis.Findings)
	assert.Equal(t, []string{"Retry with simplified analysis"}, analysis.Recommendations)
	assert.True(t, analysis.Degraded)
	assert.Equal(t, "rate limited", analysis.Error)
	assert.Zero(t, analysis.QualityScore)

	empty := RawAnalysis(nil, nil)
	assert.Equal(t, "0/0", empty.SuccessRate)
	assert.Empty(t, empty.Error)
}
