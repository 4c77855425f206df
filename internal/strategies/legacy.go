package strategies

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resume-parser/internal/types"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	locationRe = regexp.MustCompile(`\b[A-Z][A-Za-z.\-]+(?:\s[A-Z][A-Za-z.\-]+)*,\s?(?:[A-Z]{2}|[A-Z][a-z]+(?:\s[A-Z][a-z]+)*)\b`)
	urlRe      = regexp.MustCompile(`(?i)(https?://|www\.|linkedin\.com|github\.com)`)
)

const (
	maxHeadingWords = 5
	maxHeadingChars = 40
	maxTitleChars   = 80
	maxNameLines    = 5
)

// LegacyStrategy is the regex and keyword parser. It needs no model and no layout.
type LegacyStrategy struct{}

// NewLegacyStrategy creates the regex parser strategy
func NewLegacyStrategy() *LegacyStrategy {
	return &LegacyStrategy{}
}

// Name returns the strategy label
func (s *LegacyStrategy) Name() string { return NameLegacy }

// Available reports whether the legacy parser is enabled
func (s *LegacyStrategy) Available(caps Capabilities) bool { return caps.Legacy }

// TryParse parses the document's linear text
func (s *LegacyStrategy) TryParse(ctx context.Context, in *Input) (*types.ParsedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := in.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Message: "no text to parse"}
	}
	return ParseText(text), nil
}

// ParseText extracts a resume from plain text: identity and contact fields from
// the top of the document, sections from recognized headings.
func ParseText(text string) *types.ParsedResume {
	lines := nonEmptyLines(text)
	r := types.NewParsedResume()

	r.Email = emailRe.FindString(text)
	r.Phone = strings.TrimSpace(phoneRe.FindString(text))

	headings := make(map[int]string, 8)
	firstHeading := len(lines)
	for i, line := range lines {
		// an all-caps name on the first line is not a heading
		if i == 0 && looksLikeName(line) {
			if _, _, canonical := CanonicalSection(line); !canonical {
				continue
			}
		}
		if title, ok := matchHeading(line); ok {
			headings[i] = title
			if i < firstHeading {
				firstHeading = i
			}
		}
	}

	// name and title only come from the header block above the first section
	header := min(firstHeading, maxNameLines)
	consumed := make(map[int]bool)
	for i := 0; i < header; i++ {
		line := lines[i]
		if isContactLine(line) || !looksLikeName(line) {
			continue
		}
		r.Name = line
		consumed[i] = true
		if next := i + 1; next < firstHeading {
			if !isContactLine(lines[next]) && len(lines[next]) <= maxTitleChars {
				r.Title = lines[next]
				consumed[next] = true
			}
		}
		break
	}

	var summary []string
	for i := 0; i < firstHeading; i++ {
		line := lines[i]
		if consumed[i] {
			continue
		}
		if isContactLine(line) {
			if r.Location == "" {
				r.Location = findLocation(line)
			}
			continue
		}
		if loc := findLocation(line); loc != "" && loc == line {
			if r.Location == "" {
				r.Location = loc
			}
			continue
		}
		summary = append(summary, line)
	}
	r.Summary = strings.Join(summary, " ")

	var sections []types.Section
	var current *types.Section
	for i := firstHeading; i < len(lines); i++ {
		if title, ok := headings[i]; ok {
			sections = append(sections, types.Section{Title: title, Bullets: []types.Bullet{}})
			current = &sections[len(sections)-1]
			continue
		}
		if consumed[i] || current == nil {
			continue
		}
		if containsAny(lines[i], r.Email, r.Phone) {
			continue
		}
		text, marked := stripBulletMarker(lines[i])
		if text == "" {
			continue
		}
		if n := len(current.Bullets); n > 0 && !marked && isContinuation(text) {
			current.Bullets[n-1].Text += " " + text
			continue
		}
		current.Bullets = append(current.Bullets, types.Bullet{Text: text})
	}

	r.Sections = sections
	return PostProcess(r)
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = collapseSpaces(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// matchHeading recognizes a section heading line and returns its title.
// Canonical synonyms always match; other short all-caps lines start a custom section.
func matchHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":"))
	if trimmed == "" || len(trimmed) > maxHeadingChars || len(strings.Fields(trimmed)) > maxHeadingWords {
		return "", false
	}
	if strings.HasSuffix(trimmed, ".") {
		return "", false
	}
	if _, _, ok := CanonicalSection(trimmed); ok {
		return trimmed, true
	}
	if isAllCapsHeading(trimmed) {
		return trimmed, true
	}
	return "", false
}

func isAllCapsHeading(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		} else if unicode.IsDigit(r) {
			return false
		}
	}
	return letters >= 3
}

func isContactLine(line string) bool {
	return emailRe.MatchString(line) || phoneRe.MatchString(line) || urlRe.MatchString(line)
}

// looksLikeName accepts two to four capitalized words of letters
func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 || len(line) > 50 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
				return false
			}
		}
	}
	return true
}

func findLocation(line string) string {
	for _, part := range strings.Split(line, "|") {
		part = strings.TrimSpace(part)
		if emailRe.MatchString(part) || phoneRe.MatchString(part) || urlRe.MatchString(part) {
			continue
		}
		if loc := locationRe.FindString(part); loc != "" {
			return loc
		}
	}
	return ""
}

func containsAny(line string, values ...string) bool {
	for _, v := range values {
		if v != "" && strings.Contains(line, v) {
			return true
		}
	}
	return false
}

// isContinuation reports whether an unmarked line continues the previous bullet
func isContinuation(text string) bool {
	r := []rune(text)
	return len(r) > 0 && unicode.IsLower(r[0])
}
