package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewClient_VertexRequiresProject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderVertex

	_, err := NewClient(context.Background(), cfg, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project and location")
}

func TestExtractTextFromResponse_Empty(t *testing.T) {
	_, err := extractTextFromResponse(nil)
	assert.Error(t, err)

	_, err = extractVertexText(nil)
	assert.Error(t, err)
}
