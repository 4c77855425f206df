package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/resume-parser/internal/types"
)

// ErrUploadTooLarge indicates the document exceeds the upload cap
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("document exceeds the %d byte upload limit", e.Limit)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an upload error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ResultStatus maps a parse result to an HTTP status. Low confidence is still 200.
func ResultStatus(result *types.ParseResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Metadata.ParsingMethod {
	case types.MethodUnsupported:
		return http.StatusUnsupportedMediaType
	case types.MethodExtractionFailed, types.MethodParseFailed, types.MethodLegacyUnavailable:
		return http.StatusUnprocessableEntity
	case types.MethodTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
