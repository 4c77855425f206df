package validation

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// IssueInstructionLikeText is recorded when resume text contains phrases aimed at the model
const IssueInstructionLikeText = "document contains instruction-like text"

// InjectionCheckResult holds the result of a basic injection heuristic check.
type InjectionCheckResult struct {
	IsSafe  bool     // Whether the content passed the heuristic check
	Matches []string // Matched phrases, lowercased
	Reason  string   // Human-readable explanation
}

// injectionPatterns catch obvious attempts to steer the parsing model from inside a resume.
// Phrases common in ordinary resumes ("act as", "you are") must not match.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions?`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|everything)`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)(rate|score|rank)\s+this\s+(candidate|resume)\s+(as\s+)?(the\s+)?(highest|best|top)`),
}

// CheckInjection scans untrusted document text for instruction-like phrases.
func CheckInjection(text string) *InjectionCheckResult {
	var matches []string
	for _, pattern := range injectionPatterns {
		for _, m := range pattern.FindAllString(text, -1) {
			matches = append(matches, strings.ToLower(m))
		}
	}

	if len(matches) == 0 {
		return &InjectionCheckResult{IsSafe: true}
	}
	return &InjectionCheckResult{
		IsSafe:  false,
		Matches: matches,
		Reason:  "detected instruction-like phrases: " + strings.Join(matches, ", "),
	}
}

// LogInjectionWarning logs a warning if suspicious content is detected.
// It does NOT block processing.
func LogInjectionWarning(logger zerolog.Logger, result *InjectionCheckResult, source string) {
	if result == nil || result.IsSafe {
		return
	}
	logger.Warn().Str("source", source).Strs("matches", result.Matches).Msg("potential prompt injection in document")
}

// StripInjectionAttempts replaces instruction-like phrases with a marker before text is sent to a model.
func StripInjectionAttempts(text string) string {
	result := text
	for _, pattern := range injectionPatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}
