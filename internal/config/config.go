// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"exodash/internal/archive"
	"exodash/internal/cache"
	"exodash/internal/domain"
	"exodash/internal/observability"
	"exodash/internal/service/dashboard"
)

// ArchiveConfig controls the TAP client.
type ArchiveConfig struct {
	URL     string        // TAP sync endpoint
	Timeout time.Duration // per-request timeout, body included
	RPS     float64       // outbound requests per second; 0 disables the limit
	Burst   int
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool
	Exporter    string // stdout | otlp
	Endpoint    string
	SampleRatio float64
}

// Config holds the configuration of the dashboard server.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	Archive ArchiveConfig

	DefaultLimit      int // row limit used when a request names none
	SnapshotCacheSize int // snapshots kept in the LRU
	MaxCurves         int // series cap per curve chart

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 50)
	RateLimitBurst int     // burst capacity (default 100)

	// CORS
	CORSAllowedOrigins []string // allowed origins for /v1 (default: ["*"])

	Tracing TracingConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// TracingSettings converts the tracing section for observability.InitTracing.
func (c *Config) TracingSettings() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: "exodash",
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// LoadFromEnv loads configuration from environment variables. Malformed or
// out-of-range values are errors; unset values take defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr: envString("LISTEN_ADDR", ":8080"),
		LogLevel:   envString("LOG_LEVEL", "info"),
		Env:        envString("ENV", "development"),
		Archive: ArchiveConfig{
			URL: envString("ARCHIVE_URL", archive.DefaultEndpoint),
		},
		Tracing: TracingConfig{
			Enabled:  parseBoolEnvDefault("TRACING_ENABLED", false),
			Exporter: strings.ToLower(envString("TRACING_EXPORTER", "stdout")),
			Endpoint: os.Getenv("OTLP_ENDPOINT"),
		},
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.Archive.Timeout, err = envDuration("ARCHIVE_TIMEOUT", archive.DefaultTimeout)
	collect(err)
	cfg.Archive.RPS, err = envFloat("ARCHIVE_RPS", archive.DefaultRPS)
	collect(err)
	cfg.Archive.Burst, err = envInt("ARCHIVE_BURST", archive.DefaultBurst)
	collect(err)
	cfg.DefaultLimit, err = envInt("DEFAULT_LIMIT", domain.DefaultLimit)
	collect(err)
	cfg.SnapshotCacheSize, err = envInt("SNAPSHOT_CACHE_SIZE", cache.DefaultSize)
	collect(err)
	cfg.MaxCurves, err = envInt("MAX_CURVES", dashboard.DefaultMaxCurves)
	collect(err)
	cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 50)
	collect(err)
	cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 100)
	collect(err)
	cfg.Tracing.SampleRatio, err = envFloat("TRACING_SAMPLE_RATIO", 1)
	collect(err)

	// CORS
	cfg.CORSAllowedOrigins = []string{"*"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Archive.RPS == 0 {
		cfg.Warnings = append(cfg.Warnings, "ARCHIVE_RPS=0 disables the outbound archive rate limit")
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Exporter == "otlp" && cfg.Tracing.Endpoint == "" {
		cfg.Warnings = append(cfg.Warnings, "OTLP_ENDPOINT not set; using localhost:4317")
	}
	return cfg, nil
}

// Validate checks ranges and production guards.
func (c *Config) Validate() error {
	if err := domain.ValidateLimit(c.DefaultLimit); err != nil {
		return fmt.Errorf("DEFAULT_LIMIT: %w", err)
	}
	if c.Archive.Timeout <= 0 {
		return fmt.Errorf("ARCHIVE_TIMEOUT must be positive, got %s", c.Archive.Timeout)
	}
	if c.Archive.RPS < 0 {
		return fmt.Errorf("ARCHIVE_RPS must not be negative, got %g", c.Archive.RPS)
	}
	if c.Archive.Burst < 1 {
		return fmt.Errorf("ARCHIVE_BURST must be at least 1, got %d", c.Archive.Burst)
	}
	if c.SnapshotCacheSize < 1 {
		return fmt.Errorf("SNAPSHOT_CACHE_SIZE must be at least 1, got %d", c.SnapshotCacheSize)
	}
	if c.MaxCurves < 1 {
		return fmt.Errorf("MAX_CURVES must be at least 1, got %d", c.MaxCurves)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be in [0, 1], got %g", c.Tracing.SampleRatio)
	}
	switch c.Tracing.Exporter {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("TRACING_EXPORTER must be stdout or otlp, got %q", c.Tracing.Exporter)
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must name at least one origin")
	}

	// Production mode: insecure defaults are fatal errors.
	if c.IsProduction() {
		for _, o := range c.CORSAllowedOrigins {
			if o == "*" {
				return fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
			}
		}
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
