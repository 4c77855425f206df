package vision

import (
	"errors"
	"fmt"
)

// ErrDependencyMissing is returned when the rasterizer is not installed.
// Callers match it with errors.Is to skip vision rather than retry it.
var ErrDependencyMissing = errors.New("vision rendering dependency missing")

// DependencyError names the missing executable
type DependencyError struct {
	Binary string
	Cause  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found in PATH. Please install poppler-utils to enable vision parsing", e.Binary)
}

func (e *DependencyError) Unwrap() error {
	return ErrDependencyMissing
}

// RenderError represents a rasterization failure for an otherwise available renderer
type RenderError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
