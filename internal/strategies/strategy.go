// Package strategies implements the interchangeable resume parsing backends:
// structured text with an LLM, page images with a vision LLM, and a regex parser.
package strategies

import (
	"context"
	"strings"

	"github.com/jonathan/resume-parser/internal/complexity"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/format"
	"github.com/jonathan/resume-parser/internal/layout"
	"github.com/jonathan/resume-parser/internal/types"
)

// Strategy names, also used as attempt labels
const (
	NameStructured = "text_structured"
	NameVision     = "vision"
	NameLegacy     = "legacy"
)

// Capabilities records which optional dependencies were found at startup.
// It is computed once and passed in; strategies never probe the environment themselves.
type Capabilities struct {
	LLM          bool // a model client is configured
	Renderer     bool // a page rasterizer is installed
	Legacy       bool // the regex parser is enabled
	FontMetadata bool // secondary font metadata extraction is usable
	Clustering   bool // density clustering for column detection
}

// Input is everything a strategy may consume for one document
type Input struct {
	FileType   format.FileType
	Data       []byte
	Structure  *extraction.Structure
	Layout     *layout.Model
	Complexity *complexity.Report
	RawText    string

	// RetryIssues lists validator findings from an earlier attempt, if any
	RetryIssues []string
}

// Text returns the best linear text for the document: layout blocks column by
// column in reading order when available, otherwise the plain extracted text.
func (in *Input) Text() string {
	if in.Layout != nil {
		var cols []string
		for _, c := range in.Layout.ColumnText() {
			if strings.TrimSpace(c) != "" {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			return strings.Join(cols, "\n\n")
		}
	}
	return in.RawText
}

// Strategy is one way of turning a document into a ParsedResume
type Strategy interface {
	// Name returns the strategy label (text_structured, vision, legacy)
	Name() string
	// Available reports whether the strategy's dependencies are present
	Available(caps Capabilities) bool
	// TryParse parses the document. Implementations honor ctx cancellation.
	TryParse(ctx context.Context, in *Input) (*types.ParsedResume, error)
}
