package contract

import (
	"testing"
	"time"

	"github.com/huangsam/codescore/core/score"
	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		LogLevel:             "info",
		LogFormat:            "text",
		ListenAddr:           ":9000",
		CacheMaxSize:         1000,
		CacheCleanupInterval: "5m",
		CacheTTL:             "1h",
		DedupeInflight:       true,
		ToolTimeout:          "10s",
		AnalysisBackend:      "sqlite",
		RateLimit:            5,
		RateBurst:            10,
		Output:               "text",
		Color:                "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 1000, cfg.CacheMaxSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheCleanupInterval)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ToolTimeout)
	assert.True(t, cfg.DedupeInflight)
	assert.Equal(t, schema.SQLiteBackend, cfg.AnalysisBackend)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, score.DefaultWeights(), cfg.Weights)
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := &ConfigRawInput{CacheMaxSize: 10, Color: "no"}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, schema.TextLog, cfg.LogFormat)
	assert.Equal(t, DefaultCleanupInterval, cfg.CacheCleanupInterval)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultToolTimeout, cfg.ToolTimeout)
	assert.Equal(t, schema.NoneBackend, cfg.AnalysisBackend)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"invalid log level", func(in *ConfigRawInput) { in.LogLevel = "loud" }},
		{"invalid log format", func(in *ConfigRawInput) { in.LogFormat = "xml" }},
		{"zero cache size", func(in *ConfigRawInput) { in.CacheMaxSize = 0 }},
		{"bad cleanup interval", func(in *ConfigRawInput) { in.CacheCleanupInterval = "soon" }},
		{"negative ttl", func(in *ConfigRawInput) { in.CacheTTL = "-1h" }},
		{"zero ttl", func(in *ConfigRawInput) { in.CacheTTL = "0s" }},
		{"invalid backend", func(in *ConfigRawInput) { in.AnalysisBackend = "oracle" }},
		{"mysql without dsn", func(in *ConfigRawInput) { in.AnalysisBackend = "mysql" }},
		{"negative rate", func(in *ConfigRawInput) { in.RateLimit = -1 }},
		{"rate without burst", func(in *ConfigRawInput) { in.RateBurst = 0 }},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "csv" }},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }},
		{"negative width", func(in *ConfigRawInput) { in.Width = -1 }},
		{"invalid color", func(in *ConfigRawInput) { in.Color = "rainbow" }},
		{"negative weight", func(in *ConfigRawInput) {
			w := -0.5
			in.Weights = &WeightsRawInput{Lint: &w}
		}},
		{"all weights zero", func(in *ConfigRawInput) {
			z := 0.0
			in.Weights = &WeightsRawInput{Complexity: &z, Maintainability: &z, Security: &z, Lint: &z}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			assert.Error(t, ProcessAndValidate(&Config{}, input))
		})
	}
}

func TestProcessWeightsOverride(t *testing.T) {
	security := 0.5
	lint := 0.0
	input := validRawInput()
	input.Weights = &WeightsRawInput{Security: &security, Lint: &lint}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, score.Weights{Complexity: 0.3, Maintainability: 0.3, Security: 0.5, Lint: 0}, cfg.Weights)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/codescore", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/codescore", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=codescore", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"unknown backend", schema.DatabaseBackend("redis"), "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, schema.NoneBackend, b)

	b, err = ParseBackend(" PostgreSQL ")
	require.NoError(t, err)
	assert.Equal(t, schema.PostgreSQLBackend, b)

	_, err = ParseBackend("mongo")
	assert.Error(t, err)
}
