// Package pipeline provides the orchestration for parsing an uploaded resume:
// detection, extraction, layout analysis, complexity scoring, strategy
// escalation, validation and the legacy safety net.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/complexity"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/format"
	"github.com/jonathan/resume-parser/internal/layout"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline/steps"
	"github.com/jonathan/resume-parser/internal/strategies"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/jonathan/resume-parser/internal/validation"
	"github.com/jonathan/resume-parser/internal/vision"
)

// Strategies holds the parsing backends. Any of them may be nil.
type Strategies struct {
	Structured strategies.Strategy
	Vision     strategies.Strategy
	Legacy     strategies.Strategy
}

// Pipeline parses resumes. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	opts    Options
	caps    strategies.Capabilities
	strats  Strategies
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// New creates a pipeline. metrics may be nil.
func New(opts Options, caps strategies.Capabilities, strats Strategies, logger zerolog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		opts:    opts,
		caps:    caps,
		strats:  strats,
		logger:  observability.Component(logger, "pipeline"),
		metrics: metrics,
	}
}

// Capabilities returns the capability set the pipeline was built with
func (p *Pipeline) Capabilities() strategies.Capabilities {
	return p.caps
}

// ParseResume runs the full pipeline on one document. It never returns an error:
// every failure is a ParseResult with Success false and a parsing method tag.
func (p *Pipeline) ParseResume(ctx context.Context, data []byte, filename string) (result *types.ParseResult) {
	r := p.newRun()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Msg("parse panicked")
			result = r.fail(types.MethodError, fmt.Sprintf("unexpected error: %v", rec))
		}
	}()

	if p.opts.MaxParsingTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.MaxParsingTime)
		defer cancel()
	}

	r.logger.Debug().Str("filename", filename).Int("bytes", len(data)).Msg("parse started")
	return r.execute(ctx, data, filename)
}

// run is the state of one ParseResume call
type run struct {
	p         *Pipeline
	requestID string
	start     time.Time
	tracker   *steps.Tracker
	logger    zerolog.Logger

	fileType  format.FileType
	rawText   string
	meta      types.ParseMetadata
	notes     []string
	attempted map[string]bool
	lastErr   error
}

func (p *Pipeline) newRun() *run {
	id := uuid.New().String()
	return &run{
		p:         p,
		requestID: id,
		start:     time.Now(),
		tracker:   steps.NewTracker(),
		logger:    p.logger.With().Str("request_id", id).Logger(),
		meta: types.ParseMetadata{
			RequestID: id,
			Issues:    []string{},
			Attempts:  []types.Attempt{},
		},
		notes:     []string{},
		attempted: make(map[string]bool),
	}
}

func (r *run) execute(ctx context.Context, data []byte, filename string) *types.ParseResult {
	p := r.p

	r.fileType = format.Detect(data, filename)
	r.meta.FileType = r.fileType.String()
	r.advance(steps.Detect, fmt.Sprintf("Detected %s document", r.fileType), nil)
	if !r.fileType.Supported() {
		if r.fileType == format.DOC {
			return r.fail(types.MethodUnsupported, "unsupported format: legacy .doc files cannot be parsed, save the document as PDF or DOCX")
		}
		return r.fail(types.MethodUnsupported, "unsupported format: only PDF and DOCX documents can be parsed")
	}

	structure, err := r.extract(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return r.interrupted(ctx)
		}
		return r.fail(types.MethodExtractionFailed, fmt.Sprintf("extraction failed: %v", err))
	}
	if strings.TrimSpace(r.rawText) == "" {
		return r.fail(types.MethodExtractionFailed, "extraction failed: document contains no readable text")
	}
	r.meta.PageCount = structure.PageCount()

	if check := validation.CheckInjection(r.rawText); !check.IsSafe {
		validation.LogInjectionWarning(r.logger, check, "resume")
		r.notes = append(r.notes, validation.IssueInstructionLikeText)
	}
	r.advance(steps.Extract, fmt.Sprintf("Extracted %d characters from %d page(s)", utf8.RuneCountInString(r.rawText), r.meta.PageCount), nil)
	if ctx.Err() != nil {
		return r.interrupted(ctx)
	}

	model := layout.Analyze(structure, r.fileType, p.layoutOptions())
	r.advance(steps.AnalyzeLayout, fmt.Sprintf("Found %d column(s), %d header(s), %d block(s)", model.MaxColumns(), len(model.Headers), len(model.Blocks)), model)

	report := complexity.ScoreWithThreshold(structure, model, r.fileType, p.opts.VisionThreshold)
	r.meta.ComplexityScore = report.Score
	p.metrics.ObserveComplexity(report.Score)
	r.advance(steps.ScoreComplexity, fmt.Sprintf("Complexity %.2f, recommended %s", report.Score, report.RecommendedMethod), report)

	in := &strategies.Input{
		FileType:   r.fileType,
		Data:       data,
		Structure:  structure,
		Layout:     model,
		Complexity: report,
		RawText:    r.rawText,
	}

	order := p.selectOrder(r.fileType, report)
	r.advance(steps.SelectStrategy, "Strategy order: "+strategyNames(order), nil)

	resume, method := r.escalate(ctx, in, order)
	r.advance(steps.Parse, parseMessage(method), nil)
	if ctx.Err() != nil {
		return r.interrupted(ctx)
	}

	confidence := validation.Score(resume)
	r.advance(steps.Validate, fmt.Sprintf("Confidence %.2f", confidence.OverallConfidence), confidence)

	if r.shouldRetryWithVision(method, confidence) {
		retryIn := *in
		retryIn.RetryIssues = confidence.Issues
		res := r.attempt(ctx, p.strats.Vision, &retryIn, types.MethodVisionRetry)
		if res.usable {
			retryConfidence := validation.Score(res.resume)
			if retryConfidence.OverallConfidence >= confidence.OverallConfidence {
				resume, method, confidence = res.resume, types.MethodVisionRetry, retryConfidence
			}
		}
		r.advance(steps.VisionRetry, fmt.Sprintf("Vision retry %s", res.outcome), nil)
		if ctx.Err() != nil {
			return r.interrupted(ctx)
		}
	}

	if !resume.HasContent() {
		var failure *types.ParseResult
		resume, failure = r.legacyFallback(ctx, in)
		if failure != nil {
			return failure
		}
		method = types.MethodLegacyFallback
		confidence = validation.Score(resume)
		r.advance(steps.LegacyFallback, fmt.Sprintf("Legacy parser recovered %d section(s)", len(resume.Sections)), nil)
	}

	return r.succeed(resume, method, confidence)
}

// extract runs the structured extraction under the attempt deadline and
// resolves the raw text, preferring the structure's own text.
func (r *run) extract(ctx context.Context, data []byte) (*extraction.Structure, error) {
	p := r.p
	extractor, err := extraction.ForType(r.fileType, extraction.Options{
		AugmentFonts: p.opts.AugmentFonts && p.caps.FontMetadata,
		Logger:       r.logger,
	})
	if err != nil {
		return nil, err
	}

	structure, err := runWithDeadline(ctx, p.opts.AttemptTimeout, "extraction", func(ctx context.Context) (*extraction.Structure, error) {
		return extractor.ExtractWithStructure(ctx, data)
	})
	if err != nil {
		return nil, err
	}

	r.rawText = structure.Text()
	if strings.TrimSpace(r.rawText) == "" {
		text, textErr := runWithDeadline(ctx, p.opts.AttemptTimeout, "text extraction", func(ctx context.Context) (string, error) {
			return extractor.ExtractTextOnly(ctx, data)
		})
		if textErr != nil {
			r.logger.Debug().Err(textErr).Msg("plain text extraction failed")
		}
		r.rawText = text
	}
	return structure, nil
}

func (p *Pipeline) layoutOptions() layout.Options {
	opts := p.opts.Layout
	if !p.caps.Clustering {
		opts.Clustering = false
	}
	return opts
}

func (p *Pipeline) usable(s strategies.Strategy) bool {
	return s != nil && s.Available(p.caps)
}

// visionEligible reports whether vision may run at all for this document
func (p *Pipeline) visionEligible(ft format.FileType) bool {
	return ft == format.PDF && p.opts.UseVision && p.usable(p.strats.Vision)
}

// selectOrder returns the primary strategies in the order they are tried.
// Vision leads when the document has columns or reaches the complexity threshold.
func (p *Pipeline) selectOrder(ft format.FileType, report *complexity.Report) []strategies.Strategy {
	var order []strategies.Strategy
	visionOK := p.visionEligible(ft)
	structuredOK := p.usable(p.strats.Structured)

	if visionOK && (report.Factors.HasColumns || report.Score >= p.opts.ComplexityThreshold) {
		order = append(order, p.strats.Vision)
		if structuredOK {
			order = append(order, p.strats.Structured)
		}
		return order
	}

	if structuredOK {
		order = append(order, p.strats.Structured)
	}
	if visionOK {
		order = append(order, p.strats.Vision)
	}
	return order
}

// escalate tries each strategy once until one yields content
func (r *run) escalate(ctx context.Context, in *strategies.Input, order []strategies.Strategy) (*types.ParsedResume, string) {
	var firstOutcome string
	for i, s := range order {
		if ctx.Err() != nil {
			return nil, ""
		}
		res := r.attempt(ctx, s, in, s.Name())
		if i == 0 {
			firstOutcome = res.outcome
		}
		if res.usable {
			return res.resume, resolveMethod(order[0].Name(), firstOutcome, s.Name())
		}
	}
	return nil, ""
}

// resolveMethod names the path that produced a result
func resolveMethod(first, firstOutcome, winner string) string {
	if winner == first {
		return winner
	}
	switch winner {
	case strategies.NameStructured:
		if first == strategies.NameVision && firstOutcome == types.OutcomeTimeout {
			return types.MethodVisionTimeoutFallback
		}
		return types.MethodTextStructuredFallback
	case strategies.NameVision:
		return types.MethodVision
	}
	return winner
}

func (r *run) shouldRetryWithVision(method string, confidence types.ConfidenceReport) bool {
	if confidence.OverallConfidence >= r.p.opts.MinConfidence {
		return false
	}
	if method == types.MethodVision || method == types.MethodVisionRetry {
		return false
	}
	return r.p.visionEligible(r.fileType) && !r.attempted[strategies.NameVision]
}

type attemptResult struct {
	resume  *types.ParsedResume
	outcome string
	usable  bool
}

// attempt invokes one strategy under the per-attempt deadline and records it
func (r *run) attempt(ctx context.Context, s strategies.Strategy, in *strategies.Input, label string) attemptResult {
	start := time.Now()
	r.attempted[s.Name()] = true

	resume, err := runWithDeadline(ctx, r.p.opts.AttemptTimeout, label, func(ctx context.Context) (*types.ParsedResume, error) {
		return s.TryParse(ctx, in)
	})

	res := attemptResult{resume: resume, outcome: classifyAttempt(resume, err)}
	record := types.Attempt{
		Strategy:   label,
		Outcome:    res.outcome,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		record.Error = err.Error()
		r.lastErr = err
	}
	if res.outcome == types.OutcomeSuccess {
		res.usable = true
		record.Confidence = validation.Score(resume).OverallConfidence
		if record.Confidence < r.p.opts.MinConfidence {
			record.Outcome = types.OutcomeLowConfidence
		}
	}
	r.meta.Attempts = append(r.meta.Attempts, record)
	r.p.metrics.ObserveAttempt(label, record.Outcome)

	event := r.logger.Info()
	if !res.usable {
		event = r.logger.Warn().Err(err)
	}
	event.Str("strategy", label).
		Str("outcome", record.Outcome).
		Int64("duration_ms", record.DurationMS).
		Float64("confidence", record.Confidence).
		Msg("strategy attempt finished")

	return res
}

func classifyAttempt(resume *types.ParsedResume, err error) string {
	switch {
	case err == nil && resume.HasContent():
		return types.OutcomeSuccess
	case err == nil:
		return types.OutcomeEmpty
	case errors.Is(err, ErrAttemptTimeout), errors.Is(err, context.DeadlineExceeded):
		return types.OutcomeTimeout
	case errors.Is(err, vision.ErrDependencyMissing), errors.Is(err, strategies.ErrUnavailable):
		return types.OutcomeSkipped
	default:
		return types.OutcomeError
	}
}

// legacyFallback is the last resort when no primary strategy produced content
func (r *run) legacyFallback(ctx context.Context, in *strategies.Input) (*types.ParsedResume, *types.ParseResult) {
	p := r.p
	if !p.opts.EnableLegacy {
		return nil, r.fail(types.MethodParseFailed, r.actionableMessage())
	}
	if !p.usable(p.strats.Legacy) {
		return nil, r.fail(types.MethodLegacyUnavailable, "all parsing strategies failed and the legacy parser is not available")
	}

	res := r.attempt(ctx, p.strats.Legacy, in, strategies.NameLegacy)
	if ctx.Err() != nil {
		return nil, r.interrupted(ctx)
	}
	if !res.usable {
		msg := "all parsing strategies failed, including the legacy parser"
		if r.lastErr != nil {
			msg += ": " + r.lastErr.Error()
		}
		return nil, r.fail(types.MethodParseFailed, msg)
	}
	return res.resume, nil
}

// actionableMessage tells the caller what to change so parsing can succeed
func (r *run) actionableMessage() string {
	p := r.p
	var hints []string
	if !p.caps.LLM {
		hints = append(hints, "set GEMINI_API_KEY or configure Vertex AI to enable LLM parsing")
	}
	if r.fileType == format.PDF && p.opts.UseVision && !p.caps.Renderer {
		hints = append(hints, "install poppler-utils (pdftoppm) to enable vision parsing")
	}
	hints = append(hints, "enable the legacy parser (RESUME_PARSER_ENABLE_LEGACY=true)")

	msg := "no parsing strategy produced usable content"
	if r.lastErr != nil {
		msg += " (last error: " + r.lastErr.Error() + ")"
	}
	return msg + "; " + strings.Join(hints, "; ")
}

func (r *run) advance(step, message string, content any) {
	if err := r.tracker.Complete(step); err != nil {
		r.logger.Error().Err(err).Msg("pipeline step out of order")
	}
	r.logger.Debug().Str("step", step).Msg(message)
	emitProgress(r.p.opts.OnProgress, r.requestID, step, message, content)
}

// interrupted converts an expired context into a terminal result
func (r *run) interrupted(ctx context.Context) *types.ParseResult {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return r.fail(types.MethodTimeout, fmt.Sprintf("timeout: parsing exceeded %s", r.p.opts.MaxParsingTime))
	}
	return r.fail(types.MethodError, fmt.Sprintf("parse cancelled: %v", ctx.Err()))
}

func (r *run) fail(method, message string) *types.ParseResult {
	r.meta.ParsingMethod = method
	r.meta.Issues = append(r.meta.Issues, r.notes...)
	return r.finish(&types.ParseResult{
		Success: false,
		Data:    nil,
		Error:   message,
	})
}

func (r *run) succeed(resume *types.ParsedResume, method string, confidence types.ConfidenceReport) *types.ParseResult {
	resume.EnsureDefaults()
	r.meta.ParsingMethod = method
	r.meta.ConfidenceScore = confidence.OverallConfidence
	r.meta.Issues = append(append(r.meta.Issues, r.notes...), confidence.Issues...)
	return r.finish(&types.ParseResult{
		Success: true,
		Data:    resume,
	})
}

func (r *run) finish(result *types.ParseResult) *types.ParseResult {
	elapsed := time.Since(r.start)
	r.meta.ProcessingTimeMS = elapsed.Milliseconds()
	result.Metadata = r.meta
	result.RawText = truncateRunes(r.rawText, r.p.opts.RawTextLimit)

	r.advance(steps.Done, "Parse finished with "+r.meta.ParsingMethod, result)
	r.p.metrics.ObserveParse(r.meta.ParsingMethod, result.Success, elapsed)

	event := r.logger.Info()
	if !result.Success {
		event = r.logger.Warn().Str("error", result.Error)
	}
	event.Bool("success", result.Success).
		Str("file_type", r.meta.FileType).
		Str("parsing_method", r.meta.ParsingMethod).
		Int64("processing_time_ms", r.meta.ProcessingTimeMS).
		Float64("complexity_score", r.meta.ComplexityScore).
		Float64("confidence_score", r.meta.ConfidenceScore).
		Msg("parse finished")

	return result
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func strategyNames(order []strategies.Strategy) string {
	if len(order) == 0 {
		return "none available"
	}
	names := make([]string, len(order))
	for i, s := range order {
		names[i] = s.Name()
	}
	return strings.Join(names, " → ")
}

func parseMessage(method string) string {
	if method == "" {
		return "No primary strategy produced content"
	}
	return "Parsed with " + method
}

// ParseResumeWithProgress runs ParseResume reporting progress to cb instead of
// the callback configured in Options.
func (p *Pipeline) ParseResumeWithProgress(ctx context.Context, data []byte, filename string, cb ProgressCallback) *types.ParseResult {
	cp := *p
	cp.opts.OnProgress = cb
	return cp.ParseResume(ctx, data, filename)
}
