package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/server/ratelimit"
	"github.com/jonathan/resume-parser/internal/strategies"
	"github.com/jonathan/resume-parser/internal/types"
)

// fakeParser records what it was asked to parse and returns a canned result
type fakeParser struct {
	mu       sync.Mutex
	data     []byte
	filename string
	result   *types.ParseResult
	events   []pipeline.ProgressEvent
}

func (f *fakeParser) ParseResume(_ context.Context, data []byte, filename string) *types.ParseResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
	f.filename = filename
	return f.result
}

func (f *fakeParser) ParseResumeWithProgress(ctx context.Context, data []byte, filename string, cb pipeline.ProgressCallback) *types.ParseResult {
	for _, e := range f.events {
		cb(e)
	}
	return f.ParseResume(ctx, data, filename)
}

func successResult() *types.ParseResult {
	return &types.ParseResult{
		Success: true,
		Data: &types.ParsedResume{
			Name:     "Jane Doe",
			Sections: []types.Section{{Title: "Skills", Bullets: []types.Bullet{{Text: "Go"}}}},
		},
		Metadata: types.ParseMetadata{
			RequestID:     "req-1",
			ParsingMethod: types.MethodTextStructured,
			Issues:        []string{},
			Attempts:      []types.Attempt{},
		},
	}
}

func failureResult(method string) *types.ParseResult {
	return &types.ParseResult{
		Success:  false,
		Error:    "failed: " + method,
		Metadata: types.ParseMetadata{ParsingMethod: method, Issues: []string{}, Attempts: []types.Attempt{}},
	}
}

type testServer struct {
	*Server
	parser   *fakeParser
	metrics  *observability.Metrics
	registry *prometheus.Registry
}

func newTestServer(cfg Config) *testServer {
	parser := &fakeParser{result: successResult()}
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	if cfg.RateLimit == nil {
		cfg.RateLimit = &ratelimit.Config{Enabled: false}
	}
	s := New(cfg, parser, metrics, registry, zerolog.Nop())
	return &testServer{Server: s, parser: parser, metrics: metrics, registry: registry}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleParse_Multipart(t *testing.T) {
	ts := newTestServer(Config{})
	body, contentType := multipartBody(t, "file", "jane.pdf", []byte("%PDF-1.4 fake"))

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got types.ParseResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "Jane Doe", got.Data.Name)
	assert.Equal(t, types.MethodTextStructured, got.Metadata.ParsingMethod)

	assert.Equal(t, "jane.pdf", ts.parser.filename)
	assert.Equal(t, []byte("%PDF-1.4 fake"), ts.parser.data)
}

func TestHandleParse_RawBody(t *testing.T) {
	ts := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse?filename=cv.docx", strings.NewReader("PK\x03\x04"))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cv.docx", ts.parser.filename)
	assert.Equal(t, []byte("PK\x03\x04"), ts.parser.data)
}

func TestHandleParse_MissingFileField(t *testing.T) {
	ts := newTestServer(Config{})
	body, contentType := multipartBody(t, "document", "jane.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "'file' is required")
	assert.Nil(t, ts.parser.data)
}

func TestHandleParse_TooLarge(t *testing.T) {
	ts := newTestServer(Config{MaxUploadBytes: 16})

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse?filename=big.pdf", bytes.NewReader(make([]byte, 64)))
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "16 byte upload limit")
}

func TestHandleParse_MultipartTooLarge(t *testing.T) {
	ts := newTestServer(Config{MaxUploadBytes: 16})
	body, contentType := multipartBody(t, "file", "big.pdf", make([]byte, 64))

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleParse_FailureStatus(t *testing.T) {
	tests := []struct {
		method string
		want   int
	}{
		{types.MethodUnsupported, http.StatusUnsupportedMediaType},
		{types.MethodExtractionFailed, http.StatusUnprocessableEntity},
		{types.MethodParseFailed, http.StatusUnprocessableEntity},
		{types.MethodLegacyUnavailable, http.StatusUnprocessableEntity},
		{types.MethodTimeout, http.StatusGatewayTimeout},
		{types.MethodError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			ts := newTestServer(Config{})
			ts.parser.result = failureResult(tt.method)

			req := httptest.NewRequest(http.MethodPost, "/resumes/parse?filename=x.pdf", strings.NewReader("x"))
			rec := httptest.NewRecorder()
			ts.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			var got types.ParseResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.False(t, got.Success)
			assert.Nil(t, got.Data)
			assert.Equal(t, tt.method, got.Metadata.ParsingMethod)
		})
	}
}

func TestHandleParseStream(t *testing.T) {
	ts := newTestServer(Config{})
	ts.parser.events = []pipeline.ProgressEvent{
		{Step: "detect", Category: "ingestion", Message: "Detected pdf document", RequestID: "req-1"},
		{Step: "extract", Category: "ingestion", Message: "Extracted", Content: map[string]int{"big": 1}},
	}

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse/stream?filename=jane.pdf", strings.NewReader("%PDF"))
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events, datas, ids []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, name)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			datas = append(datas, data)
		}
		if id, ok := strings.CutPrefix(line, "id: "); ok {
			ids = append(ids, id)
		}
	}
	assert.Equal(t, []string{"step", "step", "result"}, events)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	require.Len(t, datas, 3)
	assert.NotContains(t, datas[1], "big")

	var result types.ParseResult
	require.NoError(t, json.Unmarshal([]byte(datas[2]), &result))
	assert.True(t, result.Success)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(Config{Capabilities: strategies.Capabilities{LLM: true, Legacy: true, Clustering: true}})

	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status       string          `json:"status"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.Capabilities["llm"])
	assert.False(t, body.Capabilities["vision"])
	assert.True(t, body.Capabilities["legacy"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse?filename=x.pdf", strings.NewReader("x"))
	ts.Handler().ServeHTTP(httptest.NewRecorder(), req)
	ts.metrics.ObserveParse(types.MethodTextStructured, true, time.Second)

	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume_parser_http_requests_total")
	assert.Contains(t, rec.Body.String(), "resume_parser_requests_total")
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequestsTotal.WithLabelValues("/resumes/parse", "200")))
}

func TestRateLimit_ParseEndpoint(t *testing.T) {
	ts := newTestServer(Config{RateLimit: &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(0.01, 2),
	}})
	defer ts.rateLimiter.Stop()

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/resumes/parse?filename=x.pdf", strings.NewReader("x"))
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		ts.Handler().ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	// health stays reachable
	health := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	ts.Handler().ServeHTTP(health, req)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(Config{})
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resumes", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	ts := newTestServer(Config{Port: 0})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ts.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHandleParseStream_FailureSendsErrorEvent(t *testing.T) {
	ts := newTestServer(Config{})
	ts.parser.result = failureResult(types.MethodExtractionFailed)

	req := httptest.NewRequest(http.MethodPost, "/resumes/parse/stream?filename=x.pdf", strings.NewReader("%PDF"))
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, "event: error\ndata: {\"error\":\"failed: extraction_failed\"}")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(&ErrUploadTooLarge{Limit: 1}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "file", Message: "missing"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(context.Canceled))
}

func TestResultStatus_LowConfidenceIsOK(t *testing.T) {
	result := successResult()
	result.Metadata.ConfidenceScore = 0.2
	result.Metadata.Issues = []string{"missing email"}
	assert.Equal(t, http.StatusOK, ResultStatus(result))
}
