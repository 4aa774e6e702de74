package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// logger is built from the validated log settings during setup.
var logger = contract.DiscardLogger()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "codescore",
	Short:              "Score Python code quality and track analyses over time.",
	Long:               `Codescore runs style, security and lint checks over Python source, aggregates them into quality scores and serves them over HTTP, MCP and the CLI.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("CODESCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", schema.TextLog)
	viper.SetDefault("listen-addr", contract.DefaultListenAddr)
	viper.SetDefault("cache-max-size", contract.DefaultCacheMaxSize)
	viper.SetDefault("cache-cleanup-interval", contract.DefaultCleanupInterval.String())
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL.String())
	viper.SetDefault("dedupe-inflight", true)
	viper.SetDefault("tool-timeout", contract.DefaultToolTimeout.String())
	viper.SetDefault("predict", true)
	viper.SetDefault("analysis-backend", schema.SQLiteBackend)
	viper.SetDefault("analysis-db-connect", "")
	viper.SetDefault("webhook-secret", "")
	viper.SetDefault("source-mirror-dir", "")
	viper.SetDefault("rate-limit", contract.DefaultRateLimit)
	viper.SetDefault("rate-burst", contract.DefaultRateBurst)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".codescore") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup merges defaults, file, env and flags, then validates them into cfg.
func sharedSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	color.NoColor = color.NoColor || !cfg.UseColors
	logger = contract.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(rootCtx)
}
