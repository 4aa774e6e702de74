// Package cmd defines the command-line interface for codescore.
package cmd

import (
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(smellsCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisListCmd)
	analysisCmd.AddCommand(analysisLabelCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", string(schema.TextLog), "Log format: text or json")
	rootCmd.PersistentFlags().Int("cache-max-size", contract.DefaultCacheMaxSize, "Maximum number of cached analysis results")
	rootCmd.PersistentFlags().String("cache-cleanup-interval", contract.DefaultCleanupInterval.String(), "Minimum spacing between expired entry sweeps")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long an analysis result stays cached")
	rootCmd.PersistentFlags().Bool("dedupe-inflight", true, "Share one computation between concurrent analyses of the same source")
	rootCmd.PersistentFlags().String("tool-timeout", contract.DefaultToolTimeout.String(), "Timeout for each analysis tool run (0 disables)")
	rootCmd.PersistentFlags().Bool("predict", true, "Attach a clean/smell prediction to every analysis")
	rootCmd.PersistentFlags().String("analysis-backend", string(schema.SQLiteBackend), "Analysis storage backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for the analysis backend")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen-addr", contract.DefaultListenAddr, "Address the HTTP server listens on")
	serveCmd.Flags().String("webhook-secret", "", "GitHub webhook secret (prefer CODESCORE_WEBHOOK_SECRET)")
	serveCmd.Flags().String("source-mirror-dir", "", "Directory for bare repository mirrors used by the webhook (empty disables fetching)")
	serveCmd.Flags().Float64("rate-limit", contract.DefaultRateLimit, "Requests per second per client on /analyze and the webhook (0 disables)")
	serveCmd.Flags().Int("rate-burst", contract.DefaultRateBurst, "Burst size for the rate limiter")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Bool("save", false, "Store the result in the analysis backend")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of analysisListCmd to Viper
	analysisListCmd.Flags().Int("limit", contract.DefaultPageLimit, "Number of analyses to list")
	analysisListCmd.Flags().Int("skip", 0, "Number of analyses to skip")
	analysisListCmd.Flags().String("repository", "", "Only list analyses of this repository")
	if err := viper.BindPFlags(analysisListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis list flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the release version")
}
