package ratelimit

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration. The parse endpoint gets
// parsePerSecond requests per second with the given burst; the switches,
// global default and IP lists come from environment variables.
func LoadConfig(parsePerSecond float64, parseBurst int) *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(parsePerSecond, parseBurst),
	}
}

// ParsePath is the upload endpoint, the only expensive route
const ParsePath = "/resumes/parse"

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(parsePerSecond float64, parseBurst int) []EndpointConfig {
	perMinute := int(math.Ceil(parsePerSecond * 60))
	if perMinute < 1 {
		perMinute = 1
	}
	return []EndpointConfig{
		// Parsing runs extraction and model calls
		{Path: ParsePath, Method: "POST", Limit: perMinute, Window: time.Minute, Burst: parseBurst},
		// Health and metrics are unlimited, handled in the matcher
	}
}

// envOr parses the environment variable key, falling back to def when it is unset or malformed
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := parse(value)
	if err != nil {
		return def
	}
	return parsed
}

// parseIPList parses a comma-separated list of client IPs into a set
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
