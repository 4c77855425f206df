package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/format"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/prompts"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/jonathan/resume-parser/internal/vision"
)

// DefaultMaxVisionPages bounds how many rendered pages are sent to the model
const DefaultMaxVisionPages = 4

// VisionStrategy renders PDF pages and sends the images to a vision model
type VisionStrategy struct {
	client   llm.Client
	renderer vision.PageRenderer
	maxPages int
	logger   zerolog.Logger
}

// NewVisionStrategy creates the page-image strategy
func NewVisionStrategy(client llm.Client, renderer vision.PageRenderer, maxPages int, logger zerolog.Logger) *VisionStrategy {
	if maxPages <= 0 {
		maxPages = DefaultMaxVisionPages
	}
	return &VisionStrategy{
		client:   client,
		renderer: renderer,
		maxPages: maxPages,
		logger:   logger.With().Str("strategy", NameVision).Logger(),
	}
}

// Name returns the strategy label
func (s *VisionStrategy) Name() string { return NameVision }

// Available reports whether both a model client and a page renderer exist
func (s *VisionStrategy) Available(caps Capabilities) bool {
	return caps.LLM && caps.Renderer && s.client != nil && s.renderer != nil
}

// TryParse renders the document and parses the page images.
// Render dependency failures are returned unwrapped so callers can match vision.ErrDependencyMissing.
func (s *VisionStrategy) TryParse(ctx context.Context, in *Input) (*types.ParsedResume, error) {
	if in.FileType != format.PDF {
		return nil, fmt.Errorf("%s: %s documents cannot be rendered: %w", NameVision, in.FileType, ErrUnavailable)
	}
	if s.client == nil || s.renderer == nil {
		return nil, fmt.Errorf("%s: %w", NameVision, ErrUnavailable)
	}

	pages, err := s.renderer.Render(ctx, in.Data, s.maxPages)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, &ParseError{Message: "renderer produced no pages"}
	}

	images := make([]llm.Image, 0, len(pages))
	for _, p := range pages {
		images = append(images, llm.Image{Format: imageFormat(p.MIMEType), Data: p.Data})
	}

	tier := llm.TierStandard
	if len(in.RetryIssues) > 0 {
		tier = llm.TierAdvanced
	}
	s.logger.Debug().Int("pages", len(images)).Str("tier", string(tier)).Msg("requesting vision parse")

	resp, err := s.client.GenerateJSONWithImages(ctx, buildVisionPrompt(in.RetryIssues), images, tier)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate content from vision model", Cause: err}
	}
	return DecodeResume(resp)
}

func buildVisionPrompt(retryIssues []string) string {
	base := prompts.MustRender(prompts.VisionParse, map[string]string{
		"Schema": llm.RenderSchema(llm.ResumeSchema()),
	})
	if len(retryIssues) == 0 {
		return base
	}
	return prompts.MustRender(prompts.VisionRetryParse, map[string]string{
		"Issues": strings.Join(retryIssues, "; "),
		"Base":   base,
	})
}

func imageFormat(mimeType string) string {
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		return sub
	}
	return "png"
}
