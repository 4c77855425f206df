package pipeline

import (
	"time"

	"github.com/jonathan/resume-parser/internal/layout"
)

// Defaults for Options
const (
	DefaultComplexityThreshold = 0.30
	DefaultVisionThreshold     = 0.5
	DefaultMinConfidence       = 0.6
	DefaultMaxParsingTime      = 60 * time.Second
	DefaultAttemptTimeout      = 45 * time.Second
	DefaultRawTextLimit        = 5000
)

// Options holds configuration for running the pipeline
type Options struct {
	UseVision    bool
	EnableLegacy bool

	// ComplexityThreshold routes PDFs to vision first when the score reaches it
	ComplexityThreshold float64
	// VisionThreshold decides the advisory recommended_method
	VisionThreshold float64
	MinConfidence   float64

	MaxParsingTime time.Duration
	AttemptTimeout time.Duration

	// RawTextLimit caps ParseResult.RawText in runes; <= 0 keeps everything
	RawTextLimit int

	Layout       layout.Options
	AugmentFonts bool
	OnProgress   ProgressCallback
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		UseVision:           true,
		EnableLegacy:        true,
		ComplexityThreshold: DefaultComplexityThreshold,
		VisionThreshold:     DefaultVisionThreshold,
		MinConfidence:       DefaultMinConfidence,
		MaxParsingTime:      DefaultMaxParsingTime,
		AttemptTimeout:      DefaultAttemptTimeout,
		RawTextLimit:        DefaultRawTextLimit,
		Layout:              layout.DefaultOptions(),
		AugmentFonts:        true,
	}
}
