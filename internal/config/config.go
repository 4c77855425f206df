// Package config provides configuration loading and validation for the parser.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider names accepted in llm_provider
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
)

// Config represents the parser configuration that can be loaded from a JSON file.
// All fields are optional; missing values are filled by MergeWithDefaults.
type Config struct {
	// Routing
	UseVisionParser     *bool   `json:"use_vision_parser,omitempty"`
	EnableLegacyParser  *bool   `json:"enable_legacy_parser,omitempty"`
	ComplexityThreshold float64 `json:"complexity_threshold,omitempty" validate:"gte=0,lte=1"` // Column-aware vision routing threshold
	VisionThreshold     float64 `json:"vision_threshold,omitempty" validate:"gte=0,lte=1"`     // Advisory recommended_method threshold
	MinConfidenceScore  float64 `json:"min_confidence_score,omitempty" validate:"gte=0,lte=1"`

	// Limits
	MaxParsingTimeSeconds int   `json:"max_parsing_time_seconds,omitempty" validate:"gte=1,lte=600"`
	AttemptTimeoutSeconds int   `json:"attempt_timeout_seconds,omitempty" validate:"gte=1,ltefield=MaxParsingTimeSeconds"`
	MaxVisionPages        int   `json:"max_vision_pages,omitempty" validate:"gte=1,lte=20"`
	RawTextLimit          int   `json:"raw_text_limit,omitempty" validate:"gte=0"`
	MaxUploadBytes        int64 `json:"max_upload_bytes,omitempty" validate:"gte=1024"`

	// LLM
	LLMProvider    string `json:"llm_provider,omitempty" validate:"oneof=gemini vertex"`
	APIKey         string `json:"api_key,omitempty"` // Gemini API key
	VertexProject  string `json:"vertex_project,omitempty" validate:"required_if=LLMProvider vertex"`
	VertexLocation string `json:"vertex_location,omitempty"`

	// Models overrides the model used for a tier (lite, standard, advanced)
	Models map[string]string `json:"models,omitempty" validate:"dive,keys,oneof=lite standard advanced,endkeys,required"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" validate:"oneof=trace debug info warn error"`
	LogPretty bool   `json:"log_pretty,omitempty"`

	// HTTP
	Port               int     `json:"port,omitempty" validate:"gte=1,lte=65535"`
	RateLimitPerSecond float64 `json:"rate_limit_per_second,omitempty" validate:"gt=0"`
	RateLimitBurst     int     `json:"rate_limit_burst,omitempty" validate:"gte=1"`
}

// Defaults returns the documented default configuration
func Defaults() Config {
	return Config{
		UseVisionParser:       boolPtr(true),
		EnableLegacyParser:    boolPtr(true),
		ComplexityThreshold:   0.30,
		VisionThreshold:       0.5,
		MinConfidenceScore:    0.6,
		MaxParsingTimeSeconds: 60,
		AttemptTimeoutSeconds: 45,
		MaxVisionPages:        4,
		RawTextLimit:          5000,
		MaxUploadBytes:        10 << 20,
		LLMProvider:           ProviderGemini,
		VertexLocation:        "us-central1",
		LogLevel:              "info",
		Port:                  8080,
		RateLimitPerSecond:    2,
		RateLimitBurst:        5,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.UseVisionParser == nil {
		result.UseVisionParser = defaults.UseVisionParser
	}
	if result.EnableLegacyParser == nil {
		result.EnableLegacyParser = defaults.EnableLegacyParser
	}

	// Float fields: use default if zero
	if result.ComplexityThreshold == 0 {
		result.ComplexityThreshold = defaults.ComplexityThreshold
	}
	if result.VisionThreshold == 0 {
		result.VisionThreshold = defaults.VisionThreshold
	}
	if result.MinConfidenceScore == 0 {
		result.MinConfidenceScore = defaults.MinConfidenceScore
	}
	if result.RateLimitPerSecond == 0 {
		result.RateLimitPerSecond = defaults.RateLimitPerSecond
	}

	// Int fields: use default if zero
	if result.MaxParsingTimeSeconds == 0 {
		result.MaxParsingTimeSeconds = defaults.MaxParsingTimeSeconds
	}
	if result.AttemptTimeoutSeconds == 0 {
		result.AttemptTimeoutSeconds = defaults.AttemptTimeoutSeconds
	}
	if result.MaxVisionPages == 0 {
		result.MaxVisionPages = defaults.MaxVisionPages
	}
	if result.RawTextLimit == 0 {
		result.RawTextLimit = defaults.RawTextLimit
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}

	// String fields: use default if empty
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.VertexProject == "" {
		result.VertexProject = defaults.VertexProject
	}
	if result.VertexLocation == "" {
		result.VertexLocation = defaults.VertexLocation
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// LogPretty: cannot distinguish unset from false, so the file value wins

	return result
}

// ApplyEnv overrides fields from environment variables read through getenv.
// Unset or empty variables leave the field alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst **bool) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: expected a boolean, got %q", key, v))
			return
		}
		*dst = boolPtr(b)
	}
	setFloat := func(key string, dst *float64) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: expected a number, got %q", key, v))
			return
		}
		*dst = f
	}
	setInt := func(key string, dst *int) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: expected an integer, got %q", key, v))
			return
		}
		*dst = n
	}

	setString("GEMINI_API_KEY", &c.APIKey)
	setString("RESUME_PARSER_LLM_PROVIDER", &c.LLMProvider)
	setString("VERTEX_PROJECT", &c.VertexProject)
	setString("VERTEX_LOCATION", &c.VertexLocation)
	setString("LOG_LEVEL", &c.LogLevel)
	setBool("RESUME_PARSER_USE_VISION", &c.UseVisionParser)
	setBool("RESUME_PARSER_ENABLE_LEGACY", &c.EnableLegacyParser)
	setFloat("RESUME_PARSER_COMPLEXITY_THRESHOLD", &c.ComplexityThreshold)
	setFloat("RESUME_PARSER_MIN_CONFIDENCE", &c.MinConfidenceScore)
	setInt("RESUME_PARSER_MAX_PARSING_SECONDS", &c.MaxParsingTimeSeconds)
	setInt("PORT", &c.Port)

	if len(errs) > 0 {
		return fmt.Errorf("config error: invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Call it after MergeWithDefaults; zero values fail the range checks.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("'%s' failed '%s'", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// VisionEnabled reports use_vision_parser, true when unset
func (c *Config) VisionEnabled() bool {
	return c.UseVisionParser == nil || *c.UseVisionParser
}

// LegacyEnabled reports enable_legacy_parser, true when unset
func (c *Config) LegacyEnabled() bool {
	return c.EnableLegacyParser == nil || *c.EnableLegacyParser
}

// MaxParsingTime returns the outer pipeline budget
func (c *Config) MaxParsingTime() time.Duration {
	return time.Duration(c.MaxParsingTimeSeconds) * time.Second
}

// AttemptTimeout returns the per-strategy budget
func (c *Config) AttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutSeconds) * time.Second
}

func boolPtr(b bool) *bool { return &b }
