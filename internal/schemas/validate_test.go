package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedResumeSchema_IsValidJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(ParsedResumeSchema()), &doc))
	assert.Equal(t, "ParsedResume", doc["title"])
}

func TestValidateParsedResume(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{
			name: "full resume",
			json: `{"name": "Jane Doe", "title": "Engineer", "email": "jane@example.com", "phone": "", "location": "", "summary": "",
				"sections": [{"title": "Experience", "bullets": [{"text": "Built things"}]}]}`,
		},
		{
			name: "string bullets",
			json: `{"name": "Jane", "sections": [{"title": "Skills", "bullets": ["Go", "Rust"]}]}`,
		},
		{
			name: "nulls allowed",
			json: `{"name": null, "sections": null}`,
		},
		{
			name: "empty object",
			json: `{}`,
		},
		{
			name:      "sections is a string",
			json:      `{"name": "Jane", "sections": "Experience"}`,
			wantError: true,
		},
		{
			name:      "bullet object without text",
			json:      `{"sections": [{"title": "Skills", "bullets": [{"value": "Go"}]}]}`,
			wantError: true,
		},
		{
			name:      "name is a number",
			json:      `{"name": 42}`,
			wantError: true,
		},
		{
			name:      "top level array",
			json:      `[]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParsedResume(tt.json)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError type, got %T", err)
			assert.Greater(t, len(validationErr.Errors), 0)
		})
	}
}

func TestValidateParsedResume_MalformedDocument(t *testing.T) {
	err := ValidateParsedResume("{ invalid json }")
	require.Error(t, err)
	_, isValidation := err.(*ValidationError)
	assert.False(t, isValidation)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
	assert.Equal(t, "name: is required; age: must be a number", err.Summary())
}
