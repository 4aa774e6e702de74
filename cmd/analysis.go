package cmd

import (
	"fmt"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/internal/outwriter"
	"github.com/huangsam/codescore/internal/persist"
	"github.com/huangsam/codescore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analysisStore is opened by analysisSetup for the analysis subcommands.
var analysisStore contract.AnalysisStore

// analysisSetup validates config and opens the analysis store.
func analysisSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(cmd, args); err != nil {
		return err
	}
	store, err := persist.NewAnalysisStore(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis store: %w", err)
	}
	analysisStore = store
	return nil
}

// analysisTeardown closes the store opened by analysisSetup.
func analysisTeardown(_ *cobra.Command, _ []string) error {
	if analysisStore == nil {
		return nil
	}
	return analysisStore.Close()
}

// analysisCmd focused on stored analysis management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage stored analyses and exports",
	Long: `Manage the analyses stored by the API, the webhook and 'analyze --save'.

Each stored analysis keeps:
- The analyzed source and its scores
- Style, security and lint findings
- Repository and commit metadata for webhook analyses
- An optional clean/smell training label

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  list    - List stored analyses
  label   - Attach a clean/smell label
  export  - Export data to Parquet for analytics
  clear   - Remove all stored analyses
  migrate - Run database schema migrations

Examples:
  # Check store status
  codescore analysis status

  # Export for training in pandas/DuckDB
  codescore analysis export --output-file analyses`,
}

// analysisClearCmd clears the stored analyses.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored analyses",
	Long: `Delete every stored analysis including labels.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  codescore analysis export --output-file backup
  codescore analysis clear`,
	PreRunE:  analysisSetup,
	PostRunE: analysisTeardown,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := analysisStore.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear analyses: %w", err)
		}
		cmd.Println("Analysis data cleared successfully.")
		return nil
	},
}

// analysisStatusCmd shows store status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, schema version, analysis counts and timestamps of the store.

Examples:
  codescore analysis status`,
	PreRunE:  analysisSetup,
	PostRunE: analysisTeardown,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := analysisStore.GetStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get analysis status: %w", err)
		}
		persist.PrintAnalysisStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

// analysisListCmd lists stored analyses, newest first.
var analysisListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses",
	Long: `List stored analyses newest first with their scores and labels.

Examples:
  codescore analysis list --limit 20
  codescore analysis list --repository octo/demo --output json`,
	PreRunE:  analysisSetup,
	PostRunE: analysisTeardown,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit := viper.GetInt("limit")
		if limit <= 0 || limit > contract.MaxPageLimit {
			return fmt.Errorf("limit must be between 1 and %d", contract.MaxPageLimit)
		}
		skip := viper.GetInt("skip")
		if skip < 0 {
			return fmt.Errorf("skip must not be negative")
		}
		records, err := analysisStore.ListAnalyses(cmd.Context(), schema.ListQuery{
			Skip:       skip,
			Limit:      limit,
			Repository: viper.GetString("repository"),
		})
		if err != nil {
			return fmt.Errorf("failed to list analyses: %w", err)
		}
		return outwriter.NewOutWriter().WriteRecords(records, cfg)
	},
}

// analysisLabelCmd attaches a training label to a stored analysis.
var analysisLabelCmd = &cobra.Command{
	Use:   "label <id> <clean|smell>",
	Short: "Attach a clean/smell label to a stored analysis",
	Long: `Label a stored analysis for model training. Accepts clean, smell, 0 or 1.

Examples:
  codescore analysis label 42 smell`,
	Args:     cobra.ExactArgs(2),
	PreRunE:  analysisSetup,
	PostRunE: analysisTeardown,
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscan(args[0], &id); err != nil || id <= 0 {
			return fmt.Errorf("invalid analysis id %q", args[0])
		}
		label, err := parseLabel(args[1])
		if err != nil {
			return err
		}
		if err := analysisStore.SetLabel(cmd.Context(), id, label); err != nil {
			return fmt.Errorf("failed to label analysis %d: %w", id, err)
		}
		cmd.Printf("Analysis %d labeled %s\n", id, args[1])
		return nil
	},
}

func parseLabel(s string) (int, error) {
	switch s {
	case "clean", "0":
		return schema.CleanLabel, nil
	case "smell", "1":
		return schema.SmellLabel, nil
	default:
		return 0, fmt.Errorf("invalid label %q: must be clean, smell, 0 or 1", s)
	}
}

// analysisExportCmd exports stored analyses to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored analyses to Parquet for BI tools and training",
	Long: `Export every stored analysis to Parquet.

Writes two datasets next to the --output-file prefix:
- <prefix>.analyses.parquet - scores, metrics, labels and source per analysis
- <prefix>.findings.parquet - one row per finding, keyed by analysis id

Requires: --output-file parameter

Examples:
  codescore analysis export --output-file codescore
  duckdb -c "SELECT label, avg(overall_score) FROM 'codescore.analyses.parquet' GROUP BY 1"`,
	PreRunE:  analysisSetup,
	PostRunE: analysisTeardown,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := persist.ExportAnalyses(cmd.Context(), cmd.OutOrStdout(), analysisStore, cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to export analysis data: %w", err)
		}
		return nil
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
// It validates config without opening the store, so migrations can run on a fresh database.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  codescore analysis migrate

  # Migrate to specific version
  codescore analysis migrate --target-version 2

  # Rollback everything
  codescore analysis migrate --target-version 0`,
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		connStr := cfg.AnalysisDBConnect
		if cfg.AnalysisBackend == schema.SQLiteBackend && connStr == "" {
			connStr = contract.GetAnalysisDBFilePath()
		}
		targetVersion := viper.GetInt("target-version")
		if err := persist.MigrateAnalysis(cmd.OutOrStdout(), cfg.AnalysisBackend, connStr, targetVersion); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}
