package pipeline

import (
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/strategies"
	"github.com/jonathan/resume-parser/internal/vision"
)

// DetectCapabilities probes the environment once at startup.
// llmConfigured reports whether a model client was built; legacy whether the
// regex parser is compiled in and allowed. Font metadata depends on a writable
// temp directory for tabula. Clustering is pure Go and always compiled in; the
// flag exists so callers and tests can switch column inference off.
func DetectCapabilities(llmConfigured, legacy bool) strategies.Capabilities {
	return strategies.Capabilities{
		LLM:          llmConfigured,
		Renderer:     vision.Available(),
		Legacy:       legacy,
		FontMetadata: extraction.FontMetadataAvailable(),
		Clustering:   true,
	}
}
