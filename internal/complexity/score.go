// Package complexity reduces layout and extraction signals to a 0..1 difficulty score.
package complexity

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/format"
	"github.com/jonathan/resume-parser/internal/layout"
)

// Method is a recommended parsing method
type Method string

const (
	// MethodTextStructured parses reconstructed text with layout hints
	MethodTextStructured Method = "text_structured"
	// MethodVision parses rendered page images
	MethodVision Method = "vision"
)

// Factor weights; the sum is capped at 1.0
const (
	WeightColumns     = 0.30
	WeightTables      = 0.20
	WeightImages      = 0.20
	WeightFontVariety = 0.15
	WeightHeaderDense = 0.10

	// FontVarianceThreshold is the coefficient of variation above which font sizes count as mixed
	FontVarianceThreshold = 0.30
	// HeaderDensityThreshold is the header-to-block ratio above which a layout is non-standard
	HeaderDensityThreshold = 0.10
	// DefaultVisionThreshold is the score at or above which vision is recommended
	DefaultVisionThreshold = 0.5
)

// Factors are the individual signals behind a score
type Factors struct {
	HasColumns        bool    `json:"has_columns"`
	HasTables         bool    `json:"has_tables"`
	HasImages         bool    `json:"has_images"`
	FontVariance      bool    `json:"font_variance"`
	NonStandardLayout bool    `json:"non_standard_layout"`
	FontSizeCV        float64 `json:"font_size_cv"`
	HeaderBlockRatio  float64 `json:"header_block_ratio"`
}

// Report is the scorer's output
type Report struct {
	Score             float64 `json:"complexity_score"`
	Factors           Factors `json:"factors"`
	RecommendedMethod Method  `json:"recommended_method"`
}

// Score computes the complexity report with the default vision threshold
func Score(s *extraction.Structure, m *layout.Model, ft format.FileType) *Report {
	return ScoreWithThreshold(s, m, ft, DefaultVisionThreshold)
}

// ScoreWithThreshold computes the complexity report. It is additive, pure, and never fails.
func ScoreWithThreshold(s *extraction.Structure, m *layout.Model, _ format.FileType, visionThreshold float64) *Report {
	var f Factors

	if m != nil {
		f.HasColumns = m.HasColumns()
		if len(m.Blocks) > 0 {
			f.HeaderBlockRatio = float64(len(m.Headers)) / float64(len(m.Blocks))
		}
	}
	f.NonStandardLayout = f.HeaderBlockRatio > HeaderDensityThreshold

	if s != nil {
		f.HasTables = len(s.AllTables()) > 0
		f.HasImages = s.ImageCount() > 0
		f.FontSizeCV = coefficientOfVariation(s.FontSizes())
	}
	f.FontVariance = f.FontSizeCV > FontVarianceThreshold

	score := 0.0
	if f.HasColumns {
		score += WeightColumns
	}
	if f.HasTables {
		score += WeightTables
	}
	if f.HasImages {
		score += WeightImages
	}
	if f.FontVariance {
		score += WeightFontVariety
	}
	if f.NonStandardLayout {
		score += WeightHeaderDense
	}
	score = math.Min(1.0, math.Round(score*100)/100)

	method := MethodTextStructured
	if score >= visionThreshold {
		method = MethodVision
	}

	return &Report{Score: score, Factors: f, RecommendedMethod: method}
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
