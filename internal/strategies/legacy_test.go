package strategies

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/format"
	"github.com/jonathan/resume-parser/internal/layout"
	"github.com/jonathan/resume-parser/internal/testfixtures"
	"github.com/jonathan/resume-parser/internal/types"
)

func TestParseText_SingleColumn(t *testing.T) {
	text := `Jane Doe
Senior Software Engineer
jane.doe@example.com | (555) 123-4567 | Austin, TX
Experience
- Built distributed systems serving 10M users
- Led migration to Kubernetes,
  reducing costs by 30%
Education
- BS Computer Science, UT Austin
Skills
- Go, Python, Kubernetes`

	r := ParseText(text)

	assert.Equal(t, "Jane Doe", r.Name)
	assert.Equal(t, "Senior Software Engineer", r.Title)
	assert.Equal(t, "jane.doe@example.com", r.Email)
	assert.Equal(t, "(555) 123-4567", r.Phone)
	assert.Equal(t, "Austin, TX", r.Location)
	assert.Empty(t, r.Summary)

	require.Len(t, r.Sections, 3)
	assert.Equal(t, "Work Experience", r.Sections[0].Title)
	assert.Equal(t, []types.Bullet{
		{Text: "Built distributed systems serving 10M users"},
		{Text: "Led migration to Kubernetes, reducing costs by 30%"},
	}, r.Sections[0].Bullets)
	assert.Equal(t, "Education", r.Sections[1].Title)
	assert.Equal(t, "Skills", r.Sections[2].Title)
	assert.Equal(t, "Go, Python, Kubernetes", r.Sections[2].Bullets[0].Text)
}

func TestParseText_NameOnlyFromHeaderBlock(t *testing.T) {
	text := `jane doe, phd
jane@example.com | 555-123-4567
EXPERIENCE
Senior Software Engineer
Acme Widgets Inc
- Built the billing system`

	r := ParseText(text)

	assert.Empty(t, r.Name)
	assert.Empty(t, r.Title)
	assert.Equal(t, "jane doe, phd", r.Summary)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, "Work Experience", r.Sections[0].Title)
	assert.Equal(t, []types.Bullet{
		{Text: "Senior Software Engineer"},
		{Text: "Acme Widgets Inc"},
		{Text: "Built the billing system"},
	}, r.Sections[0].Bullets)
}

func TestParseText_TitleStopsAtHeading(t *testing.T) {
	r := ParseText("Jane Doe\nSKILLS\n- Go")

	assert.Equal(t, "Jane Doe", r.Name)
	assert.Empty(t, r.Title)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, "Skills", r.Sections[0].Title)
}

func TestParseText_SummaryAndCustomSections(t *testing.T) {
	text := `ALEX KIM
Data Scientist
Seattle, WA
Statistician turning messy data into decisions.
PROJECTS
• Churn model
VOLUNTEERING
• Math tutor`

	r := ParseText(text)

	assert.Equal(t, "ALEX KIM", r.Name)
	assert.Equal(t, "Data Scientist", r.Title)
	assert.Equal(t, "Seattle, WA", r.Location)
	assert.Equal(t, "Statistician turning messy data into decisions.", r.Summary)

	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Projects", r.Sections[0].Title)
	assert.Equal(t, "VOLUNTEERING", r.Sections[1].Title)
	assert.Equal(t, "Math tutor", r.Sections[1].Bullets[0].Text)
}

func TestParseText_NoStructure(t *testing.T) {
	r := ParseText("just some lowercase words without structure")

	assert.Empty(t, r.Name)
	assert.NotNil(t, r.Sections)
	assert.Empty(t, r.Sections)
	assert.Equal(t, "just some lowercase words without structure", r.Summary)
}

// Scenario: a DOCX with both "Employment History" and "Work Experience" is folded
// into one canonical section with the repeated bullet removed.
func TestLegacyStrategy_MergesDuplicateSectionsFromDOCX(t *testing.T) {
	data := testfixtures.DuplicateSectionResume()
	e := extraction.NewDOCXExtractor(extraction.Options{Logger: zerolog.Nop()})

	structure, err := e.ExtractWithStructure(context.Background(), data)
	require.NoError(t, err)
	raw, err := e.ExtractTextOnly(context.Background(), data)
	require.NoError(t, err)

	in := &Input{
		FileType:  format.DOCX,
		Data:      data,
		Structure: structure,
		Layout:    layout.Analyze(structure, format.DOCX, layout.DefaultOptions()),
		RawText:   raw,
	}

	s := NewLegacyStrategy()
	assert.True(t, s.Available(Capabilities{Legacy: true}))
	assert.False(t, s.Available(Capabilities{LLM: true}))

	r, err := s.TryParse(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Maria Garcia", r.Name)
	assert.Equal(t, "Product Designer", r.Title)
	assert.Equal(t, "maria.garcia@example.com", r.Email)
	assert.Equal(t, "+1 415 555 0199", r.Phone)

	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Work Experience", r.Sections[0].Title)
	assert.Equal(t, []types.Bullet{
		{Text: "Designed checkout flow used by 2M customers"},
		{Text: "Ran weekly usability studies"},
		{Text: "Built the company design system"},
	}, r.Sections[0].Bullets)
	assert.Equal(t, "Education", r.Sections[1].Title)
}

func TestLegacyStrategy_EmptyText(t *testing.T) {
	_, err := NewLegacyStrategy().TryParse(context.Background(), &Input{RawText: "  \n "})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLegacyStrategy_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLegacyStrategy().TryParse(ctx, &Input{RawText: "Jane Doe"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInputText_PrefersColumns(t *testing.T) {
	in := &Input{
		RawText: "raw",
		Layout: &layout.Model{
			Blocks: []layout.Block{
				{Text: "main", Column: 1},
				{Text: "side", Column: 0},
			},
			ReadingOrder: []int{0, 1},
		},
	}
	assert.Equal(t, "side\n\nmain", in.Text())

	assert.Equal(t, "raw", (&Input{RawText: "raw"}).Text())
}
