// Package observability provides structured logging, Prometheus metrics, and formatted output for verbose CLI mode.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Pretty bool   // console output for development
	Output io.Writer
}

// NewLogger creates the service logger
func NewLogger(cfg LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "resume-parser").
		Logger()
}

// Component returns a sub-logger tagged with a component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
