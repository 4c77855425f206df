package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSchema(t *testing.T) {
	schema := ExtractionSchema{
		Name: "Test",
		Fields: []SchemaField{
			{Name: "a", Type: "string", Required: true},
			{Name: "b", Description: "second"},
		},
	}

	out := RenderSchema(schema)
	assert.Equal(t, "{\n  \"a\": string (required),\n  \"b\": string // second\n}", out)
}

func TestResumeSchema_Fields(t *testing.T) {
	schema := ResumeSchema()

	var names []string
	for _, f := range schema.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "title", "email", "phone", "location", "summary", "sections"}, names)
}
