package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent Events. Events carry increasing ids starting at 1.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	lastID  int
}

// NewSSEWriter sets the stream headers and commits the 200 status
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends data as a single-line JSON payload
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}

	s.lastID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.lastID, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) error {
	return s.WriteEvent("error", map[string]string{"error": message})
}
