// Package schemas provides JSON Schema validation for model output.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed parsed_resume.schema.json
var parsedResumeSchema string

var (
	compiledOnce sync.Once
	compiled     *gojsonschema.Schema
	compileErr   error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Summary returns the field errors on one line, for logs and issue lists.
func (ve *ValidationError) Summary() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		parts = append(parts, err.Field+": "+err.Message)
	}
	return strings.Join(parts, "; ")
}

// ParsedResumeSchema returns the embedded schema document.
func ParsedResumeSchema() string {
	return parsedResumeSchema
}

// ValidateParsedResume checks raw model output against the embedded ParsedResume schema.
func ValidateParsedResume(jsonContent string) error {
	compiledOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(parsedResumeSchema))
	})
	if compileErr != nil {
		return &SchemaLoadError{
			Path:    "parsed_resume.schema.json",
			Message: "embedded schema is invalid",
			Cause:   compileErr,
		}
	}

	result, err := compiled.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
