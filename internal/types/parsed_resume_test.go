package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedResume_HasContent(t *testing.T) {
	tests := []struct {
		name   string
		resume *ParsedResume
		want   bool
	}{
		{name: "nil", resume: nil, want: false},
		{name: "empty", resume: NewParsedResume(), want: false},
		{name: "name only", resume: &ParsedResume{Name: "Jane Doe"}, want: true},
		{name: "section only", resume: &ParsedResume{Sections: []Section{{Title: "Skills"}}}, want: true},
		{name: "contact only", resume: &ParsedResume{Email: "jane@example.com"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resume.HasContent())
		})
	}
}

func TestParsedResume_EnsureDefaults(t *testing.T) {
	r := &ParsedResume{Sections: []Section{{Title: "Experience"}}}
	r.EnsureDefaults()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bullets":[]`)
	assert.NotContains(t, string(data), "null")

	empty := &ParsedResume{}
	empty.EnsureDefaults()
	assert.NotNil(t, empty.Sections)
}

func TestParsedResume_BulletCount(t *testing.T) {
	r := &ParsedResume{Sections: []Section{
		{Title: "Experience", Bullets: []Bullet{{Text: "a"}, {Text: "b"}}},
		{Title: "Skills", Bullets: []Bullet{{Text: "Go"}}},
	}}
	assert.Equal(t, 3, r.BulletCount())
}

func TestParseResult_FailureOmitsData(t *testing.T) {
	result := ParseResult{
		Success:  false,
		Error:    "unsupported file type",
		Metadata: ParseMetadata{ParsingMethod: MethodUnsupported, Issues: []string{}, Attempts: []Attempt{}},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":null`)
	assert.Contains(t, string(data), `"parsing_method":"unsupported"`)
	assert.Contains(t, string(data), `"attempts":[]`)
}
