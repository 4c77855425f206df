package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/prompts"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/jonathan/resume-parser/internal/validation"
)

// StructuredStrategy sends reconstructed text plus layout hints to a text model
type StructuredStrategy struct {
	client llm.Client
	tier   llm.ModelTier
	logger zerolog.Logger
}

// NewStructuredStrategy creates the text-and-layout strategy
func NewStructuredStrategy(client llm.Client, logger zerolog.Logger) *StructuredStrategy {
	return &StructuredStrategy{
		client: client,
		tier:   llm.TierStandard,
		logger: logger.With().Str("strategy", NameStructured).Logger(),
	}
}

// Name returns the strategy label
func (s *StructuredStrategy) Name() string { return NameStructured }

// Available reports whether a model client is configured
func (s *StructuredStrategy) Available(caps Capabilities) bool {
	return caps.LLM && s.client != nil
}

// TryParse asks the model to structure the document text
func (s *StructuredStrategy) TryParse(ctx context.Context, in *Input) (*types.ParsedResume, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%s: no model client: %w", NameStructured, ErrUnavailable)
	}
	text := in.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Message: "no text to parse"}
	}

	prompt := buildStructuredPrompt(in, validation.StripInjectionAttempts(text))
	s.logger.Debug().Int("prompt_chars", len(prompt)).Msg("requesting structured parse")

	resp, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate content from LLM", Cause: err}
	}
	return DecodeResume(resp)
}

func buildStructuredPrompt(in *Input, text string) string {
	headers := "none detected"
	columns := "1"
	if in.Layout != nil {
		if h := in.Layout.HeaderTexts(); len(h) > 0 {
			headers = strings.Join(h, ", ")
		}
		if n := in.Layout.MaxColumns(); n > 0 {
			columns = fmt.Sprintf("%d", n)
		}
	}

	return prompts.MustRender(prompts.StructuredParse, map[string]string{
		"Schema":  llm.RenderSchema(llm.ResumeSchema()),
		"Headers": headers,
		"Columns": columns,
		"Text":    text,
	})
}
