// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by MergeWithDefaults and Default
const (
	DefaultPort          = 8080
	DefaultMaxInputBytes = 256 * 1024
	DefaultCacheTTL      = 24 * time.Hour
	DefaultCacheEntries  = 1024 // in-process parse cache bound
	DefaultRateLimit     = 30   // requests per minute per client
	DefaultRateBurst     = 10
	DefaultConcurrency   = 4
)

// Config represents the importer configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Parsing
	Locales       []string `json:"locales,omitempty" validate:"omitempty,dive,alpha,len=2"`
	MaxInputBytes int      `json:"max_input_bytes,omitempty" validate:"gte=0"`
	Concurrency   int      `json:"concurrency,omitempty" validate:"gte=0,lte=64"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // parse cache; disabled when empty
	CacheTTL    string `json:"cache_ttl,omitempty"`    // Go duration, e.g. "24h"

	CacheMaxEntries int `json:"cache_max_entries,omitempty" validate:"gte=0"` // in-process cache only

	// HTTP server
	Port           int      `json:"port,omitempty" validate:"gte=0,lte=65535"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	RateLimit      int      `json:"rate_limit,omitempty" validate:"gte=0"` // requests per minute
	RateBurst      int      `json:"rate_burst,omitempty" validate:"gte=0"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		Locales:         []string{"en", "pl"},
		MaxInputBytes:   DefaultMaxInputBytes,
		Concurrency:     DefaultConcurrency,
		CacheTTL:        DefaultCacheTTL.String(),
		CacheMaxEntries: DefaultCacheEntries,
		Port:            DefaultPort,
		RateLimit:       DefaultRateLimit,
		RateBurst:       DefaultRateBurst,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks that the configuration has valid values.
// It doesn't check for required fields since those depend on the command.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.CacheTTL != "" {
		if _, err := time.ParseDuration(c.CacheTTL); err != nil {
			return fmt.Errorf("config error: invalid 'cache_ttl': %w", err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables when they are set:
// DATABASE_URL, REDIS_URL, MAX_INPUT_BYTES, PORT and CV_LOCALES (comma separated).
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("MAX_INPUT_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_INPUT_BYTES: %v", err)
		}
		c.MaxInputBytes = n
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = n
	}
	if v := os.Getenv("CV_LOCALES"); v != "" {
		c.Locales = SplitList(v)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if len(result.Locales) == 0 {
		result.Locales = defaults.Locales
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}

	if result.CacheMaxEntries == 0 {
		result.CacheMaxEntries = defaults.CacheMaxEntries
	}
	if result.MaxInputBytes == 0 {
		result.MaxInputBytes = defaults.MaxInputBytes
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// CacheTTLDuration returns the parsed cache TTL, DefaultCacheTTL when unset or invalid.
func (c *Config) CacheTTLDuration() time.Duration {
	if c.CacheTTL == "" {
		return DefaultCacheTTL
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return DefaultCacheTTL
	}
	return d
}

// SplitList splits a comma separated flag or env value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
