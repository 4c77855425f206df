// Package validation scores parsed resumes and screens untrusted resume text before it reaches a model.
package validation

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resume-parser/internal/types"
)

// Check weights; they sum to 1.0
const (
	WeightName     = 0.30
	WeightSections = 0.30
	WeightEmail    = 0.15
	WeightPhone    = 0.10
	WeightHeadline = 0.15

	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Issue messages
const (
	IssueMissingName     = "missing name"
	IssueNoSections      = "no section with at least one bullet"
	IssueMissingEmail    = "missing email"
	IssueInvalidEmail    = "email looks invalid"
	IssueMissingPhone    = "missing phone"
	IssueInvalidPhone    = "phone looks invalid"
	IssueMissingHeadline = "missing title and summary"
)

var plausibleEmailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// Score checks presence and plausibility of the expected resume fields.
// The confidence is the sum of the weights of passing checks, always within [0, 1].
func Score(r *types.ParsedResume) types.ConfidenceReport {
	report := types.ConfidenceReport{Issues: []string{}}
	if r == nil {
		report.Issues = append(report.Issues, IssueMissingName, IssueNoSections)
		return report
	}

	score := 0.0
	if strings.TrimSpace(r.Name) != "" {
		score += WeightName
	} else {
		report.Issues = append(report.Issues, IssueMissingName)
	}

	if hasBulletedSection(r) {
		score += WeightSections
	} else {
		report.Issues = append(report.Issues, IssueNoSections)
	}

	switch email := strings.TrimSpace(r.Email); {
	case email == "":
		report.Issues = append(report.Issues, IssueMissingEmail)
	case !plausibleEmailRe.MatchString(email):
		report.Issues = append(report.Issues, IssueInvalidEmail)
	default:
		score += WeightEmail
	}

	switch phone := strings.TrimSpace(r.Phone); {
	case phone == "":
		report.Issues = append(report.Issues, IssueMissingPhone)
	case !plausiblePhone(phone):
		report.Issues = append(report.Issues, IssueInvalidPhone)
	default:
		score += WeightPhone
	}

	if strings.TrimSpace(r.Title) != "" || strings.TrimSpace(r.Summary) != "" {
		score += WeightHeadline
	} else {
		report.Issues = append(report.Issues, IssueMissingHeadline)
	}

	report.OverallConfidence = math.Min(1, math.Max(0, math.Round(score*100)/100))
	return report
}

func hasBulletedSection(r *types.ParsedResume) bool {
	for _, s := range r.Sections {
		for _, b := range s.Bullets {
			if strings.TrimSpace(b.Text) != "" {
				return true
			}
		}
	}
	return false
}

// plausiblePhone accepts digits with common separators and a sane digit count
func plausiblePhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(" +-().x", r):
		default:
			return false
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}
