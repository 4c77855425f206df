// Package server provides the HTTP API for uploading and parsing resumes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/server/ratelimit"
	"github.com/jonathan/resume-parser/internal/strategies"
	"github.com/jonathan/resume-parser/internal/types"
)

// DefaultMaxUploadBytes caps uploaded documents at 10 MiB
const DefaultMaxUploadBytes = 10 << 20

// Parser is the slice of the pipeline the server needs
type Parser interface {
	ParseResume(ctx context.Context, data []byte, filename string) *types.ParseResult
	ParseResumeWithProgress(ctx context.Context, data []byte, filename string, cb pipeline.ProgressCallback) *types.ParseResult
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	parser      Parser
	rateLimiter *ratelimit.Limiter
	metrics     *observability.Metrics
	gatherer    prometheus.Gatherer
	logger      zerolog.Logger
	maxUpload   int64
	caps        strategies.Capabilities
}

// Config holds server configuration
type Config struct {
	Port           int
	MaxUploadBytes int64
	RateLimit      *ratelimit.Config
	Capabilities   strategies.Capabilities
}

// New creates a new server instance. metrics and gatherer may be nil.
func New(cfg Config, parser Parser, metrics *observability.Metrics, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		parser:      parser,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		metrics:     metrics,
		gatherer:    gatherer,
		logger:      observability.Component(logger, "server"),
		maxUpload:   cfg.MaxUploadBytes,
		caps:        cfg.Capabilities,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /resumes/parse", s.handleParse)
	mux.HandleFunc("POST /resumes/parse/stream", s.handleParseStream)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withMetrics(s.withRateLimit(s.withLogging(s.withCORS(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // parse budget plus upload
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// withMetrics records request counts, latency and in-flight requests
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveHTTP(metricPath(r.URL.Path), rec.status, time.Since(start))
	})
}

// metricPath bounds label cardinality to the known routes
func metricPath(path string) string {
	switch path {
	case "/resumes/parse", "/resumes/parse/stream", "/health", "/metrics":
		return path
	default:
		return "other"
	}
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// handleHealth returns server health status and the detected capabilities
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"capabilities": map[string]bool{
			"llm":           s.caps.LLM,
			"vision":        s.caps.LLM && s.caps.Renderer,
			"legacy":        s.caps.Legacy,
			"font_metadata": s.caps.FontMetadata,
			"clustering":    s.caps.Clustering,
		},
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}

	s.logger.Warn().
		Int("limit", info.Limit).
		Int("remaining", info.Remaining).
		Time("reset", info.ResetTime).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
