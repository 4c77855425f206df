// Package llm - extractor.go describes the structured output the parsing prompts ask for.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ParsedResume")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "[{...}]"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// RenderSchema renders the JSON outline for a schema, one field per line.
func RenderSchema(schema ExtractionSchema) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ResumeSchema returns the extraction schema for a parsed resume.
func ResumeSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ParsedResume",
		Description: `You are an expert resume parser. COPY TEXT VERBATIM - do not paraphrase, summarize, or reword.
Your task is to turn the content of a resume into structured data.
Keep sections in the order they appear and keep every bullet under the section it belongs to.`,
		Fields: []SchemaField{
			{Name: "name", Type: "string", Description: "Candidate full name", Required: true},
			{Name: "title", Type: "string", Description: "Professional headline or current title"},
			{Name: "email", Type: "string", Description: "Email address"},
			{Name: "phone", Type: "string", Description: "Phone number as written"},
			{Name: "location", Type: "string", Description: "City, region or country"},
			{Name: "summary", Type: "string", Description: "Profile or summary paragraph"},
			{
				Name:        "sections",
				Type:        `[{"title": string, "bullets": [{"text": string}]}]`,
				Description: "Every resume section (experience, education, skills, projects, ...) with its items",
				Required:    true,
			},
		},
	}
}
