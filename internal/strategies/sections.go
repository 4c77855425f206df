package strategies

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-parser/internal/types"
)

// Canonical section keys
const (
	SectionWorkExperience = "work_experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionSummary        = "summary"
)

// DuplicateContainmentRatio is the minimum shorter/longer length ratio for a contained bullet to count as a duplicate
const DuplicateContainmentRatio = 0.8

type canonicalSection struct {
	key      string
	title    string
	synonyms []string
}

var canonicalSections = []canonicalSection{
	{
		key:   SectionWorkExperience,
		title: "Work Experience",
		synonyms: []string{
			"work experience", "experience", "professional experience", "employment history", "employment",
			"work history", "career history", "relevant experience", "professional background", "experience history",
		},
	},
	{
		key:      SectionEducation,
		title:    "Education",
		synonyms: []string{"education", "academic background", "education and training", "academic history", "academics"},
	},
	{
		key:   SectionSkills,
		title: "Skills",
		synonyms: []string{
			"skills", "technical skills", "core competencies", "competencies", "key skills", "skills and abilities",
			"technologies", "skills and technologies", "expertise",
		},
	},
	{
		key:      SectionProjects,
		title:    "Projects",
		synonyms: []string{"projects", "personal projects", "key projects", "selected projects", "side projects"},
	},
	{
		key:   SectionCertifications,
		title: "Certifications",
		synonyms: []string{
			"certifications", "certificates", "licenses", "licenses and certifications", "certifications and licenses",
		},
	},
	{
		key:   SectionSummary,
		title: "Summary",
		synonyms: []string{
			"summary", "professional summary", "profile", "professional profile", "about me", "about",
			"objective", "career objective", "overview",
		},
	},
}

var synonymIndex = func() map[string]canonicalSection {
	idx := make(map[string]canonicalSection)
	for _, cs := range canonicalSections {
		for _, syn := range cs.synonyms {
			idx[syn] = cs
		}
	}
	return idx
}()

// normalizeHeading lowercases a heading, folds "&" to "and", and drops punctuation
func normalizeHeading(title string) string {
	title = strings.ToLower(strings.ReplaceAll(title, "&", " and "))
	title = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, title)
	return strings.Join(strings.Fields(title), " ")
}

// CanonicalSection maps a section title to its canonical key and display title.
// ok is false for titles outside the canonical set.
func CanonicalSection(title string) (key, display string, ok bool) {
	cs, found := synonymIndex[normalizeHeading(title)]
	if !found {
		return "", "", false
	}
	return cs.key, cs.title, true
}

// sectionKey returns the merge key for a section: canonical key or normalized title
func sectionKey(title string) (key, display string) {
	if k, d, ok := CanonicalSection(title); ok {
		return k, d
	}
	return normalizeHeading(title), strings.TrimSpace(title)
}

// NormalizeSections folds synonymous sections into one canonical section each,
// preserving first-seen order and de-duplicating bullets within the merged section.
func NormalizeSections(sections []types.Section) []types.Section {
	out := make([]types.Section, 0, len(sections))
	index := make(map[string]int)

	for _, s := range sections {
		key, display := sectionKey(s.Title)
		if key == "" && len(s.Bullets) == 0 {
			continue
		}
		i, seen := index[key]
		if !seen {
			out = append(out, types.Section{Title: display, Bullets: []types.Bullet{}})
			i = len(out) - 1
			index[key] = i
		}
		out[i].Bullets = append(out[i].Bullets, s.Bullets...)
	}

	for i := range out {
		out[i].Bullets = DedupeBullets(out[i].Bullets)
	}
	return out
}

// DedupeBullets removes near-identical bullets, keeping the first occurrence
func DedupeBullets(bullets []types.Bullet) []types.Bullet {
	out := make([]types.Bullet, 0, len(bullets))
	for _, b := range bullets {
		dup := false
		for _, kept := range out {
			if IsDuplicateBullet(kept.Text, b.Text) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, b)
		}
	}
	return out
}

// IsDuplicateBullet reports whether two bullets say the same thing: equal ignoring case
// and spacing, or one contained in the other with comparable length.
func IsDuplicateBullet(a, b string) bool {
	na, nb := normalizeBullet(a), normalizeBullet(b)
	if na == "" || nb == "" {
		return na == nb
	}
	if na == nb {
		return true
	}
	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return false
	}
	return float64(len(shorter))/float64(len(longer)) >= DuplicateContainmentRatio
}

func normalizeBullet(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimRight(s, ".;,")
}

var bulletMarkers = []string{"•", "·", "▪", "◦", "○", "●", "►", "▸", "✓", "–", "—", "-", "*"}

// stripBulletMarker removes a leading list marker and the space after it
func stripBulletMarker(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			rest := strings.TrimPrefix(line, m)
			// "-" and "*" only count as markers when followed by a space
			if (m != "-" && m != "*") || rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				return strings.TrimSpace(rest), true
			}
		}
	}
	return line, false
}

// PostProcess trims every field, strips list markers, drops empty bullets,
// merges synonymous sections, and guarantees non-nil collections.
func PostProcess(r *types.ParsedResume) *types.ParsedResume {
	if r == nil {
		return types.NewParsedResume()
	}
	r.Name = collapseSpaces(r.Name)
	r.Title = collapseSpaces(r.Title)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = collapseSpaces(r.Phone)
	r.Location = collapseSpaces(r.Location)
	r.Summary = collapseSpaces(r.Summary)

	cleaned := make([]types.Section, 0, len(r.Sections))
	for _, s := range r.Sections {
		section := types.Section{Title: collapseSpaces(s.Title), Bullets: make([]types.Bullet, 0, len(s.Bullets))}
		for _, b := range s.Bullets {
			text, _ := stripBulletMarker(b.Text)
			text = collapseSpaces(text)
			if text != "" {
				section.Bullets = append(section.Bullets, types.Bullet{Text: text})
			}
		}
		if section.Title == "" && len(section.Bullets) == 0 {
			continue
		}
		cleaned = append(cleaned, section)
	}

	merged := NormalizeSections(cleaned)
	r.Sections = make([]types.Section, 0, len(merged))
	for _, s := range merged {
		if key, _, ok := CanonicalSection(s.Title); ok && key == SectionSummary {
			if r.Summary == "" {
				r.Summary = joinBullets(s.Bullets)
			}
			continue
		}
		r.Sections = append(r.Sections, s)
	}

	r.EnsureDefaults()
	return r
}

func joinBullets(bullets []types.Bullet) string {
	parts := make([]string, 0, len(bullets))
	for _, b := range bullets {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
