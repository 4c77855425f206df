package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveParse("legacy_fallback", true, 120*time.Millisecond)
	m.ObserveParse("legacy_fallback", true, 80*time.Millisecond)
	m.ObserveAttempt("vision", "skipped")
	m.ObserveComplexity(0.5)
	m.ObserveHTTP("/resumes/parse", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ParsesTotal.WithLabelValues("legacy_fallback", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyAttempts.WithLabelValues("vision", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/resumes/parse", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ComplexityScore))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveParse("x", false, time.Second)
		m.ObserveAttempt("x", "y")
		m.ObserveComplexity(1)
		m.ObserveHTTP("/", 500, time.Second)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info().Msg("hidden")
	pipelineLogger := Component(logger, "pipeline")
	pipelineLogger.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"service":"resume-parser"`)
	assert.Contains(t, out, `"component":"pipeline"`)
}

func TestNewLogger_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "loud", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
