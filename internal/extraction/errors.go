package extraction

import "fmt"

// ExtractionError represents a document that could not be opened or decoded
type ExtractionError struct {
	Format  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s extraction failed: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s extraction failed: %s", e.Format, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError is returned by ForType for formats with no extractor
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}
