// Package types provides type definitions for structured data used throughout the resume-parser system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Bullet is a single line item inside a resume section
type Bullet struct {
	Text string `json:"text"`
}

// Section is a titled group of bullets (e.g., "Work Experience")
type Section struct {
	Title   string   `json:"title"`
	Bullets []Bullet `json:"bullets"`
}

// ParsedResume is the canonical output every parsing strategy produces.
// All fields default to empty values, never nil, so consumers need no null checks.
type ParsedResume struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Location string    `json:"location"`
	Summary  string    `json:"summary"`
	Sections []Section `json:"sections"`
}

// NewParsedResume returns a ParsedResume with every collection initialized
func NewParsedResume() *ParsedResume {
	return &ParsedResume{Sections: []Section{}}
}

// EnsureDefaults replaces nil slices with empty ones, recursively
func (r *ParsedResume) EnsureDefaults() {
	if r.Sections == nil {
		r.Sections = []Section{}
	}
	for i := range r.Sections {
		if r.Sections[i].Bullets == nil {
			r.Sections[i].Bullets = []Bullet{}
		}
	}
}

// HasContent reports whether the resume carries a name or at least one section
func (r *ParsedResume) HasContent() bool {
	if r == nil {
		return false
	}
	return r.Name != "" || len(r.Sections) > 0
}

// BulletCount returns the total number of bullets across all sections
func (r *ParsedResume) BulletCount() int {
	count := 0
	for _, s := range r.Sections {
		count += len(s.Bullets)
	}
	return count
}
