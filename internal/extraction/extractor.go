package extraction

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/format"
)

// Extractor reads one document format. The two methods are independent code paths
// so a structure failure never prevents a plain-text read.
type Extractor interface {
	// ExtractWithStructure returns positioned/styled content
	ExtractWithStructure(ctx context.Context, data []byte) (*Structure, error)
	// ExtractTextOnly returns plain text with line breaks preserved
	ExtractTextOnly(ctx context.Context, data []byte) (string, error)
}

// Options tunes extractor behavior
type Options struct {
	// AugmentFonts fills missing PDF font metadata from a secondary reader
	AugmentFonts bool
	Logger       zerolog.Logger
}

// ForType returns the extractor for a detected format
func ForType(t format.FileType, opts Options) (Extractor, error) {
	switch t {
	case format.PDF:
		return NewPDFExtractor(opts), nil
	case format.DOCX:
		return NewDOCXExtractor(opts), nil
	default:
		return nil, &UnsupportedFormatError{Format: t.String()}
	}
}
