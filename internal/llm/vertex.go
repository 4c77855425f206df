package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// VertexClient implements Client for Gemini models served by Vertex AI
type VertexClient struct {
	client *genai.Client
	config *Config
}

// NewVertexClient creates a Vertex AI client for the configured project and region
func NewVertexClient(ctx context.Context, config *Config) (*VertexClient, error) {
	if config.Project == "" || config.Location == "" {
		return nil, fmt.Errorf("vertex project and location are required")
	}

	client, err := genai.NewClient(ctx, config.Project, config.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexClient{
		client: client,
		config: config,
	}, nil
}

func (c *VertexClient) model(tier ModelTier, jsonOutput bool) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	if jsonOutput {
		model.ResponseMIMEType = "application/json"
	}
	return model, nil
}

// GenerateContent generates text content using the specified model tier
func (c *VertexClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, false)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractVertexText(resp)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *VertexClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.GenerateJSONWithImages(ctx, prompt, nil, tier)
}

// GenerateJSONWithImages sends the prompt followed by each image as an inline blob
func (c *VertexClient) GenerateJSONWithImages(ctx context.Context, prompt string, images []Image, tier ModelTier) (string, error) {
	model, err := c.model(tier, true)
	if err != nil {
		return "", err
	}

	parts := []genai.Part{genai.Text(prompt)}
	for _, img := range images {
		parts = append(parts, genai.ImageData(img.Format, img.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractVertexText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *VertexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractVertexText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
