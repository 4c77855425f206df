package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-parser/internal/complexity"
	"github.com/jonathan/resume-parser/internal/layout"
	"github.com/jonathan/resume-parser/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintProgress outputs a single pipeline step line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step, message string) {
	fmt.Fprintf(p.out, "→ %-16s %s\n", step, message)
}

// PrintParsedResume outputs a human-readable summary of the parsed resume.
func (p *Printer) PrintParsedResume(r *types.ParsedResume) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", r.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", r.Title))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", r.Email))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", r.Phone))
	sb.WriteString(fmt.Sprintf("Location: %s\n", r.Location))
	if r.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", r.Summary))
	}

	for _, section := range r.Sections {
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", section.Title, len(section.Bullets)))
		count := min(len(section.Bullets), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", section.Bullets[i].Text))
		}
		if len(section.Bullets) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(section.Bullets)-maxItemsToShow))
		}
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMetadata outputs how a result was produced, including every strategy attempt.
func (p *Printer) PrintMetadata(meta types.ParseMetadata) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Request:    %s\n", meta.RequestID))
	sb.WriteString(fmt.Sprintf("File type:  %s (%d pages)\n", meta.FileType, meta.PageCount))
	sb.WriteString(fmt.Sprintf("Method:     %s\n", meta.ParsingMethod))
	sb.WriteString(fmt.Sprintf("Complexity: %.2f\n", meta.ComplexityScore))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", meta.ConfidenceScore))
	sb.WriteString(fmt.Sprintf("Time:       %d ms\n", meta.ProcessingTimeMS))

	if len(meta.Attempts) > 0 {
		sb.WriteString("\nAttempts:\n")
		for _, a := range meta.Attempts {
			sb.WriteString(fmt.Sprintf("  %-16s %-14s %6d ms\n", a.Strategy, a.Outcome, a.DurationMS))
			if a.Error != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", a.Error))
			}
		}
	}

	p.printBox("PARSE METADATA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIssues outputs validator issues, or a clean bill of health.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(issues []string) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO ISSUES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issues:\n\n", len(issues)))
	for _, issue := range issues {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", issue))
	}

	p.printBox("CONFIDENCE ISSUES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLayout outputs the column, header, and block summary of a layout model.
func (p *Printer) PrintLayout(m *layout.Model) {
	if m == nil {
		return
	}

	var sb strings.Builder
	for _, c := range m.Columns {
		regions := make([]string, 0, len(c.Regions))
		for _, r := range c.Regions {
			regions = append(regions, fmt.Sprintf("%.0f-%.0f", r.XStart, r.XEnd))
		}
		sb.WriteString(fmt.Sprintf("Page %d columns: %s\n", c.Page, strings.Join(regions, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Blocks:  %d\n", len(m.Blocks)))
	sb.WriteString(fmt.Sprintf("Headers: %d\n", len(m.Headers)))

	count := min(len(m.Headers), maxItemsToShow)
	for i := 0; i < count; i++ {
		h := m.Headers[i]
		sb.WriteString(fmt.Sprintf("  H%d  %s (page %d)\n", h.Level, h.Text, h.Page))
	}
	if len(m.Headers) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(m.Headers)-maxItemsToShow))
	}

	p.printBox("LAYOUT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComplexity outputs the complexity score and its contributing factors.
func (p *Printer) PrintComplexity(r *complexity.Report) {
	if r == nil {
		return
	}

	check := func(b bool) string {
		if b {
			return "✓"
		}
		return "·"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:       %.2f\n", r.Score))
	sb.WriteString(fmt.Sprintf("Recommended: %s\n\n", r.RecommendedMethod))
	sb.WriteString(fmt.Sprintf("%s columns\n", check(r.Factors.HasColumns)))
	sb.WriteString(fmt.Sprintf("%s tables\n", check(r.Factors.HasTables)))
	sb.WriteString(fmt.Sprintf("%s images\n", check(r.Factors.HasImages)))
	sb.WriteString(fmt.Sprintf("%s font variance (cv %.2f)\n", check(r.Factors.FontVariance), r.Factors.FontSizeCV))
	sb.WriteString(fmt.Sprintf("%s non-standard layout (headers/blocks %.2f)", check(r.Factors.NonStandardLayout), r.Factors.HeaderBlockRatio))

	p.printBox("COMPLEXITY", sb.String())
}
