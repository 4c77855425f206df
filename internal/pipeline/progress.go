package pipeline

import "github.com/jonathan/resume-parser/internal/pipeline/steps"

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step      string `json:"step"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func emitProgress(cb ProgressCallback, requestID, step, message string, content any) {
	if cb == nil {
		return
	}
	cb(ProgressEvent{
		Step:      step,
		Category:  steps.StepRegistry[step].Category,
		Message:   message,
		RequestID: requestID,
		Content:   content,
	})
}
