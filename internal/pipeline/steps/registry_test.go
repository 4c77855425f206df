package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRegistry(t *testing.T) {
	expectedSteps := []string{
		Detect, Extract, AnalyzeLayout, ScoreComplexity, SelectStrategy,
		Parse, Validate, VisionRetry, LegacyFallback, Done,
	}

	for _, stepName := range expectedSteps {
		def, ok := StepRegistry[stepName]
		require.True(t, ok, "Step %s should be in registry", stepName)
		assert.Equal(t, stepName, def.Name)
		assert.NotEmpty(t, def.Category)
	}
	assert.Len(t, StepRegistry, len(expectedSteps))
}

func TestStepRegistry_DependenciesExist(t *testing.T) {
	for name, def := range StepRegistry {
		for _, dep := range def.Dependencies {
			_, ok := StepRegistry[dep]
			assert.True(t, ok, "step %s depends on unknown step %s", name, dep)
		}
	}
}

func TestTracker_HappyPath(t *testing.T) {
	tr := NewTracker()
	for _, s := range []string{Detect, Extract, AnalyzeLayout, ScoreComplexity, SelectStrategy, Parse, Validate, Done} {
		require.NoError(t, tr.Complete(s))
	}
	require.NoError(t, tr.Complete(Validate))

	assert.Equal(t, []string{Detect, Extract, AnalyzeLayout, ScoreComplexity, SelectStrategy, Parse, Validate, Done}, tr.Completed())
	assert.Equal(t, []string{LegacyFallback, VisionRetry}, tr.AvailableSteps())
}

func TestTracker_MissingDependency(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Complete(Detect))

	err := tr.Complete(Parse)
	require.Error(t, err)

	depErr, ok := err.(*DependencyError)
	require.True(t, ok)
	assert.Equal(t, Parse, depErr.Step)
	assert.Equal(t, []string{SelectStrategy}, depErr.MissingDependencies)
	assert.Contains(t, err.Error(), "missing dependencies")
}

func TestTracker_UnknownStep(t *testing.T) {
	err := NewTracker().Complete("render_latex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestTracker_AvailableAtStart(t *testing.T) {
	assert.Equal(t, []string{Detect}, NewTracker().AvailableSteps())
}
