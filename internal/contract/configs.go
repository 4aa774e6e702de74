package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/codescore/core/score"
	"github.com/huangsam/codescore/internal/ttlcache"
	"github.com/huangsam/codescore/schema"
)

// Default values for configuration.
const (
	DefaultListenAddr      = ":8000"
	DefaultCacheMaxSize    = ttlcache.DefaultMaxSize
	DefaultCleanupInterval = ttlcache.DefaultCleanupInterval
	DefaultCacheTTL        = time.Hour
	DefaultToolTimeout     = 30 * time.Second
	DefaultRateLimit       = 5.0
	DefaultRateBurst       = 10
	DefaultPageLimit       = 10
	MaxPageLimit           = 100
	DefaultLogLevel        = "info"
)

// WeightsRawInput holds custom scoring weights from the YAML config file.
type WeightsRawInput struct {
	Complexity      *float64 `mapstructure:"complexity"`
	Maintainability *float64 `mapstructure:"maintainability"`
	Security        *float64 `mapstructure:"security"`
	Lint            *float64 `mapstructure:"lint"`
}

// Config holds the final, validated runtime configuration.
type Config struct {
	LogLevel  string
	LogFormat schema.LogFormat

	ListenAddr string

	CacheMaxSize         int
	CacheCleanupInterval time.Duration
	CacheTTL             time.Duration
	DedupeInflight       bool
	ToolTimeout          time.Duration
	Predict              bool
	Weights              score.Weights

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	WebhookSecret   string // Please use env var as this is plaintext
	SourceMirrorDir string // Empty disables webhook source fetching
	RateLimit       float64
	RateBurst       int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	LogLevel             string           `mapstructure:"log-level"`
	LogFormat            string           `mapstructure:"log-format"`
	ListenAddr           string           `mapstructure:"listen-addr"`
	CacheMaxSize         int              `mapstructure:"cache-max-size"`
	CacheCleanupInterval string           `mapstructure:"cache-cleanup-interval"`
	CacheTTL             string           `mapstructure:"cache-ttl"`
	DedupeInflight       bool             `mapstructure:"dedupe-inflight"`
	ToolTimeout          string           `mapstructure:"tool-timeout"`
	Predict              bool             `mapstructure:"predict"`
	AnalysisBackend      string           `mapstructure:"analysis-backend"`
	AnalysisDBConnect    string           `mapstructure:"analysis-db-connect"`
	WebhookSecret        string           `mapstructure:"webhook-secret"`
	SourceMirrorDir      string           `mapstructure:"source-mirror-dir"`
	RateLimit            float64          `mapstructure:"rate-limit"`
	RateBurst            int              `mapstructure:"rate-burst"`
	Output               string           `mapstructure:"output"`
	OutputFile           string           `mapstructure:"output-file"`
	Width                int              `mapstructure:"width"`
	Color                string           `mapstructure:"color"`
	Weights              *WeightsRawInput `mapstructure:"weights"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateLogging(cfg, input); err != nil {
		return err
	}
	if err := validateCacheInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := validateServerInputs(cfg, input); err != nil {
		return err
	}
	if err := validateOutputInputs(cfg, input); err != nil {
		return err
	}
	return processWeights(cfg, input.Weights)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	return nil
}

// ParseBackend normalizes a backend name. Empty means tracking is disabled.
func ParseBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

func validateLogging(cfg *Config, input *ConfigRawInput) error {
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	cfg.LogFormat = schema.LogFormat(strings.ToLower(input.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = schema.TextLog
	}
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text or json", input.LogFormat)
	}
	return nil
}

func validateCacheInputs(cfg *Config, input *ConfigRawInput) error {
	if input.CacheMaxSize <= 0 {
		return fmt.Errorf("cache max size must be greater than 0")
	}
	cfg.CacheMaxSize = input.CacheMaxSize

	var err error
	if cfg.CacheCleanupInterval, err = parseDurationOr(input.CacheCleanupInterval, DefaultCleanupInterval, "cache-cleanup-interval"); err != nil {
		return err
	}
	if cfg.CacheTTL, err = parseDurationOr(input.CacheTTL, DefaultCacheTTL, "cache-ttl"); err != nil {
		return err
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache-ttl must be positive")
	}
	if cfg.ToolTimeout, err = parseDurationOr(input.ToolTimeout, DefaultToolTimeout, "tool-timeout"); err != nil {
		return err
	}
	cfg.DedupeInflight = input.DedupeInflight
	cfg.Predict = input.Predict
	return nil
}

func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseBackend(input.AnalysisBackend)
	if err != nil {
		return err
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	return ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
}

func validateServerInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ListenAddr = input.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if input.RateLimit < 0 {
		return fmt.Errorf("rate limit must be 0 (disabled) or positive")
	}
	if input.RateLimit > 0 && input.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be greater than 0 when rate limiting is enabled")
	}
	cfg.RateLimit = input.RateLimit
	cfg.RateBurst = input.RateBurst
	cfg.WebhookSecret = input.WebhookSecret
	cfg.SourceMirrorDir = input.SourceMirrorDir
	return nil
}

func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json or parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	if input.Width < 0 {
		return fmt.Errorf("width must be 0 (auto-detect) or positive")
	}
	cfg.Width = input.Width

	useColors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid color value '%s': %w", input.Color, err)
	}
	cfg.UseColors = useColors
	return nil
}

// processWeights merges custom weights over the defaults.
func processWeights(cfg *Config, raw *WeightsRawInput) error {
	w := score.DefaultWeights()
	if raw != nil {
		for _, field := range []struct {
			name string
			src  *float64
			dst  *float64
		}{
			{"complexity", raw.Complexity, &w.Complexity},
			{"maintainability", raw.Maintainability, &w.Maintainability},
			{"security", raw.Security, &w.Security},
			{"lint", raw.Lint, &w.Lint},
		} {
			if field.src == nil {
				continue
			}
			if *field.src < 0 {
				return fmt.Errorf("weight %s must not be negative", field.name)
			}
			*field.dst = *field.src
		}
	}
	if w.Sum() == 0 {
		return fmt.Errorf("at least one score weight must be positive")
	}
	cfg.Weights = w
	return nil
}

func parseDurationOr(s string, fallback time.Duration, name string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}
