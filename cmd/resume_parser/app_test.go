package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/testfixtures"
	"github.com/jonathan/resume-parser/internal/types"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

// executeCommand runs the root command in-process with fresh flag state
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel, logPretty = "", "", false
	parseOutputFile, parseVerbose = "", false
	t.Cleanup(func() {
		configPath, logLevel, logPretty = "", "", false
		parseOutputFile, parseVerbose = "", false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// clearModelEnv keeps a developer's .env credentials out of the tests
func clearModelEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "RESUME_PARSER_LLM_PROVIDER", "VERTEX_PROJECT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadConfig_Layering(t *testing.T) {
	path := writeFixture(t, "config.json", []byte(`{"min_confidence_score": 0.8, "max_parsing_time_seconds": 90}`))

	cfg, err := loadConfig(path, envMap(map[string]string{
		"RESUME_PARSER_MAX_PARSING_SECONDS": "120",
		"GEMINI_API_KEY":                    "key",
	}))
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.MinConfidenceScore)
	assert.Equal(t, 120, cfg.MaxParsingTimeSeconds)
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, 0.30, cfg.ComplexityThreshold)
	assert.True(t, cfg.VisionEnabled())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"), envMap(nil))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = loadConfig("", envMap(map[string]string{"RESUME_PARSER_MIN_CONFIDENCE": "1.5"}))
	assert.ErrorContains(t, err, "MinConfidenceScore")

	_, err = loadConfig("", envMap(map[string]string{"RESUME_PARSER_LLM_PROVIDER": "vertex"}))
	assert.ErrorContains(t, err, "VertexProject")
}

func TestModelConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantOK   bool
		provider string
	}{
		{name: "gemini without key", cfg: config.Config{LLMProvider: config.ProviderGemini}},
		{name: "gemini with key", cfg: config.Config{LLMProvider: config.ProviderGemini, APIKey: "k"}, wantOK: true, provider: "gemini"},
		{name: "vertex without project", cfg: config.Config{LLMProvider: config.ProviderVertex}},
		{name: "vertex with project", cfg: config.Config{LLMProvider: config.ProviderVertex, VertexProject: "p"}, wantOK: true, provider: "vertex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llmConfig, ok := modelConfig(&tt.cfg)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.provider, string(llmConfig.Provider))
			}
		})
	}
}

func TestModelConfig_Overrides(t *testing.T) {
	cfg := config.Config{
		LLMProvider: config.ProviderGemini,
		APIKey:      "k",
		Models:      map[string]string{"advanced": "gemini-exp"},
	}

	llmConfig, ok := modelConfig(&cfg)
	require.True(t, ok)
	assert.Equal(t, "gemini-exp", llmConfig.GetModel(llm.TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash", llmConfig.GetModel(llm.TierStandard))
}

func TestPipelineOptions(t *testing.T) {
	cfg := config.Defaults()
	disabled := false
	cfg.UseVisionParser = &disabled
	cfg.MaxParsingTimeSeconds = 30
	cfg.AttemptTimeoutSeconds = 20

	opts := pipelineOptions(&cfg)

	assert.False(t, opts.UseVision)
	assert.True(t, opts.EnableLegacy)
	assert.Equal(t, 30*time.Second, opts.MaxParsingTime)
	assert.Equal(t, 20*time.Second, opts.AttemptTimeout)
	assert.Equal(t, 0.6, opts.MinConfidence)
	assert.Equal(t, 5000, opts.RawTextLimit)
}

func TestNewApp_WithoutCredentials(t *testing.T) {
	cfg := config.Defaults()
	a := newApp(context.Background(), &cfg, zerolog.Nop())
	defer a.Close() //nolint:errcheck

	caps := a.pipeline.Capabilities()
	assert.False(t, caps.LLM)
	assert.True(t, caps.Legacy)
	assert.Nil(t, a.client)
}

func TestParseCommand_JSON(t *testing.T) {
	clearModelEnv(t)
	path := writeFixture(t, "jane.pdf", testfixtures.SingleColumnResume())

	out, err := executeCommand(t, "parse", path)
	require.NoError(t, err)

	var result types.ParseResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Equal(t, types.MethodLegacyFallback, result.Metadata.ParsingMethod)
	assert.Equal(t, "pdf", result.Metadata.FileType)
}

func TestParseCommand_OutFile(t *testing.T) {
	clearModelEnv(t)
	path := writeFixture(t, "maria.docx", testfixtures.DuplicateSectionResume())
	outPath := filepath.Join(t.TempDir(), "out.json")

	_, err := executeCommand(t, "parse", path, "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result types.ParseResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Success)
}

func TestParseCommand_Verbose(t *testing.T) {
	clearModelEnv(t)
	path := writeFixture(t, "jane.pdf", testfixtures.SingleColumnResume())

	out, err := executeCommand(t, "parse", path, "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "detect")
	assert.Contains(t, out, "legacy_fallback")
}

func TestParseCommand_Unsupported(t *testing.T) {
	clearModelEnv(t)
	path := writeFixture(t, "notes.txt", []byte("just some notes"))

	out, err := executeCommand(t, "parse", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), types.MethodUnsupported)
	assert.Contains(t, out, `"success": false`)
}

func TestParseCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "parse", filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorContains(t, err, "failed to read input file")
}

func TestAnalyzeCommand(t *testing.T) {
	clearModelEnv(t)
	path := writeFixture(t, "two-column.pdf", testfixtures.TwoColumnResumeWithTable())

	out, err := executeCommand(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "File type: pdf")
}

func TestAnalyzeCommand_Unsupported(t *testing.T) {
	clearModelEnv(t)
	path := writeFixture(t, "legacy.doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})

	_, err := executeCommand(t, "analyze", path)
	assert.ErrorContains(t, err, "unsupported file type")
}
