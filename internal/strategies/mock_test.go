package strategies

import (
	"context"

	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/vision"
)

// MockLLMClient is a mock implementation of llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc        func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc           func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONWithImagesFunc func(ctx context.Context, prompt string, images []llm.Image, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GenerateJSONWithImages(ctx context.Context, prompt string, images []llm.Image, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONWithImagesFunc != nil {
		return m.GenerateJSONWithImagesFunc(ctx, prompt, images, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

type mockRenderer struct {
	pages []vision.PageImage
	err   error
	calls int
}

func (r *mockRenderer) Render(_ context.Context, _ []byte, maxPages int) ([]vision.PageImage, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if maxPages > 0 && len(r.pages) > maxPages {
		return r.pages[:maxPages], nil
	}
	return r.pages, nil
}
