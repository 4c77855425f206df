package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/jonathan/resume-parser/internal/pipeline"
)

// multipartOverhead allows for form boundaries and headers around the file part
const multipartOverhead = 1 << 20

// handleParse parses an uploaded resume and returns the ParseResult
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result := s.parser.ParseResume(r.Context(), data, filename)
	s.jsonResponse(w, ResultStatus(result), result)
}

// handleParseStream parses an uploaded resume and streams progress via SSE
func (s *Server) handleParseStream(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := s.parser.ParseResumeWithProgress(r.Context(), data, filename, func(event pipeline.ProgressEvent) {
		event.Content = nil
		if err := sse.WriteEvent("step", event); err != nil {
			s.logger.Debug().Err(err).Msg("error writing SSE event")
		}
	})

	if err := sse.WriteEvent("result", result); err != nil {
		s.logger.Debug().Err(err).Msg("error writing SSE result")
	}
	if !result.Success {
		if err := sse.WriteError(result.Error); err != nil {
			s.logger.Debug().Err(err).Msg("error writing SSE error")
		}
	}
}

// readUpload returns the document bytes and filename from either a multipart
// form (field "file") or a raw body with a ?filename= query parameter.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", s.uploadError(err)
		}
		return data, r.URL.Query().Get("filename"), nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return nil, "", s.uploadError(err)
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &ErrValidation{Field: "file", Message: "multipart field 'file' is required"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		return nil, "", s.uploadError(err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, "", &ErrUploadTooLarge{Limit: s.maxUpload}
	}
	return data, header.Filename, nil
}

func (s *Server) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &ErrUploadTooLarge{Limit: s.maxUpload}
	}
	return &ErrValidation{Field: "file", Message: "could not read upload: " + err.Error()}
}
