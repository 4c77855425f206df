package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-parser/internal/types"
)

func fullResume() *types.ParsedResume {
	return &types.ParsedResume{
		Name:  "Jane Doe",
		Title: "Engineer",
		Email: "jane@example.com",
		Phone: "(555) 123-4567",
		Sections: []types.Section{
			{Title: "Experience", Bullets: []types.Bullet{{Text: "Built things"}}},
		},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *types.ParsedResume)
		want       float64
		wantIssues []string
	}{
		{
			name:       "complete",
			mutate:     func(*types.ParsedResume) {},
			want:       1.0,
			wantIssues: []string{},
		},
		{
			name:       "missing name",
			mutate:     func(r *types.ParsedResume) { r.Name = " " },
			want:       0.7,
			wantIssues: []string{IssueMissingName},
		},
		{
			name:       "sections without bullets",
			mutate:     func(r *types.ParsedResume) { r.Sections[0].Bullets = nil },
			want:       0.7,
			wantIssues: []string{IssueNoSections},
		},
		{
			name:       "bad email",
			mutate:     func(r *types.ParsedResume) { r.Email = "jane at example" },
			want:       0.85,
			wantIssues: []string{IssueInvalidEmail},
		},
		{
			name:       "bad phone",
			mutate:     func(r *types.ParsedResume) { r.Phone = "call me" },
			want:       0.9,
			wantIssues: []string{IssueInvalidPhone},
		},
		{
			name:       "summary instead of title",
			mutate:     func(r *types.ParsedResume) { r.Title = ""; r.Summary = "Builder" },
			want:       1.0,
			wantIssues: []string{},
		},
		{
			name: "only name and phone",
			mutate: func(r *types.ParsedResume) {
				r.Title, r.Email, r.Sections = "", "", nil
			},
			want:       0.4,
			wantIssues: []string{IssueNoSections, IssueMissingEmail, IssueMissingHeadline},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fullResume()
			tt.mutate(r)
			report := Score(r)
			assert.InDelta(t, tt.want, report.OverallConfidence, 1e-9)
			assert.Equal(t, tt.wantIssues, report.Issues)
		})
	}
}

func TestScore_Bounded(t *testing.T) {
	inputs := []*types.ParsedResume{nil, {}, types.NewParsedResume(), fullResume()}
	for _, r := range inputs {
		report := Score(r)
		assert.GreaterOrEqual(t, report.OverallConfidence, 0.0)
		assert.LessOrEqual(t, report.OverallConfidence, 1.0)
		assert.NotNil(t, report.Issues)
	}
	assert.Equal(t, 0.0, Score(nil).OverallConfidence)
}

func TestPlausiblePhone(t *testing.T) {
	assert.True(t, plausiblePhone("+1 415 555 0199"))
	assert.True(t, plausiblePhone("555.123.4567"))
	assert.False(t, plausiblePhone("12345"))
	assert.False(t, plausiblePhone("555-CALL-NOW"))
}
