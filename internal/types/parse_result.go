package types

// Parsing method tags recorded in ParseMetadata.ParsingMethod.
// Success paths name the strategy that produced the data; failure paths name the error class.
const (
	MethodTextStructured         = "text_structured"
	MethodVision                 = "vision"
	MethodVisionRetry            = "vision_retry"
	MethodVisionTimeoutFallback  = "vision_timeout_fallback"
	MethodTextStructuredFallback = "text_structured_fallback"
	MethodLegacyFallback         = "legacy_fallback"

	MethodUnsupported       = "unsupported"
	MethodExtractionFailed  = "extraction_failed"
	MethodTimeout           = "timeout"
	MethodLegacyUnavailable = "legacy_unavailable"
	MethodParseFailed       = "parse_failed"
	MethodError             = "error"
)

// Attempt outcomes recorded in the audit trail
const (
	OutcomeSuccess       = "success"
	OutcomeError         = "error"
	OutcomeTimeout       = "timeout"
	OutcomeSkipped       = "skipped"
	OutcomeLowConfidence = "low_confidence"
	OutcomeEmpty         = "empty"
)

// Attempt records a single strategy invocation made by the pipeline
type Attempt struct {
	Strategy   string  `json:"strategy"`
	Outcome    string  `json:"outcome"`
	Error      string  `json:"error,omitempty"`
	DurationMS int64   `json:"duration_ms"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ConfidenceReport is the validator's verdict on a parsed resume
type ConfidenceReport struct {
	OverallConfidence float64  `json:"overall_confidence"`
	Issues            []string `json:"issues"`
}

// ParseMetadata describes how a ParseResult was produced
type ParseMetadata struct {
	RequestID        string    `json:"request_id"`
	FileType         string    `json:"file_type"`
	PageCount        int       `json:"page_count"`
	ComplexityScore  float64   `json:"complexity_score"`
	ConfidenceScore  float64   `json:"confidence_score"`
	ParsingMethod    string    `json:"parsing_method"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
	Issues           []string  `json:"issues"`
	Attempts         []Attempt `json:"attempts"`
}

// ParseResult is the terminal artifact of one parse invocation.
// Data is nil exactly when Success is false.
type ParseResult struct {
	Success  bool          `json:"success"`
	Data     *ParsedResume `json:"data"`
	Metadata ParseMetadata `json:"metadata"`
	RawText  string        `json:"raw_text"`
	Error    string        `json:"error,omitempty"`
}
