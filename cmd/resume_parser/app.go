package main

import (
	"context"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/strategies"
	"github.com/jonathan/resume-parser/internal/vision"
)

// loadConfig layers defaults, the optional config file, environment and flags, then validates
func loadConfig(path string, getenv func(string) string) (*config.Config, error) {
	cfg := config.Defaults()
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logPretty {
		cfg.LogPretty = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: out,
	})
}

// app bundles everything a command needs to parse documents
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	pipeline *pipeline.Pipeline
	client   llm.Client
}

// Close releases the model client, if one was created
func (a *app) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// newApp wires the model client, strategies and pipeline from configuration.
// A missing API key or renderer is not an error: the pipeline runs with
// whatever capabilities are present.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *app {
	registry := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  observability.NewMetrics(registry),
	}

	var strats pipeline.Strategies
	if llmConfig, ok := modelConfig(cfg); ok {
		client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
		if err != nil {
			logger.Warn().Err(err).Str("provider", cfg.LLMProvider).Msg("model client unavailable; continuing without LLM strategies")
		} else {
			a.client = client
			strats.Structured = strategies.NewStructuredStrategy(client, logger)

			if cfg.VisionEnabled() {
				renderer, err := vision.NewPopplerRenderer(logger)
				if err != nil {
					logger.Info().Err(err).Msg("vision parsing disabled")
				} else {
					strats.Vision = strategies.NewVisionStrategy(client, renderer, cfg.MaxVisionPages, logger)
				}
			}
		}
	} else {
		logger.Info().Msg("no model credentials configured; LLM strategies disabled")
	}

	if cfg.LegacyEnabled() {
		strats.Legacy = strategies.NewLegacyStrategy()
	}

	caps := pipeline.DetectCapabilities(a.client != nil, cfg.LegacyEnabled())
	a.pipeline = pipeline.New(pipelineOptions(cfg), caps, strats, logger, a.metrics)

	logger.Debug().
		Bool("llm", caps.LLM).
		Bool("renderer", caps.Renderer).
		Bool("legacy", caps.Legacy).
		Msg("capabilities detected")
	return a
}

// modelConfig returns the llm configuration when credentials for the chosen provider exist
func modelConfig(cfg *config.Config) (*llm.Config, bool) {
	var llmConfig *llm.Config
	switch cfg.LLMProvider {
	case config.ProviderVertex:
		if cfg.VertexProject == "" {
			return nil, false
		}
		llmConfig = llm.DefaultVertexConfig(cfg.VertexProject, cfg.VertexLocation)
	default:
		if cfg.APIKey == "" {
			return nil, false
		}
		llmConfig = llm.DefaultGeminiConfig()
	}

	for tier, model := range cfg.Models {
		llmConfig = llmConfig.WithModel(llm.ModelTier(tier), model)
	}
	return llmConfig, true
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.UseVision = cfg.VisionEnabled()
	opts.EnableLegacy = cfg.LegacyEnabled()
	opts.ComplexityThreshold = cfg.ComplexityThreshold
	opts.VisionThreshold = cfg.VisionThreshold
	opts.MinConfidence = cfg.MinConfidenceScore
	opts.MaxParsingTime = cfg.MaxParsingTime()
	opts.AttemptTimeout = cfg.AttemptTimeout()
	opts.RawTextLimit = cfg.RawTextLimit
	return opts
}

// setup loads configuration and builds the app for a command
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, newLogger(cfg, os.Stderr)), nil
}
