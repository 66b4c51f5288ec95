package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/iocache"
	"github.com/huangsam/queuewait/schema"
)

// historyBackendConfig reads the history backend settings, treating an empty backend as none.
func historyBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if b := viper.GetString("history-backend"); b != "" {
		backend = schema.DatabaseBackend(b)
	}
	connStr := viper.GetString("history-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// No run cache for history commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup is like historySetup but does NOT open the store,
// so migrations run against the database as it is.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on training history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded training sessions and exports",
	Long: `Manage the training history recorded by "queuewait train".

When a history backend is configured, every training session stores:
- Session metadata (model path, halt rule, rate, momentum, start, end, passes)
- The model and baseline error after every pass

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history
  migrate - Run database schema migrations`,
}

// historyClearCmd clears the training history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded training sessions",
	Long: `Delete all stored training sessions and pass evaluations.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  queuewait history export --output-file backup
  queuewait history clear`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		path := cfg.HistoryDBConnect
		if path == "" {
			path = contract.GetHistoryDBFilePath()
		}
		if err := iocache.ClearHistory(cfg.HistoryBackend, path, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear training history", err)
		}
		fmt.Println("Training history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display training history statistics and connection details",
	Long: `Show the backend, connection state, number of sessions and passes, the
newest and oldest session and the row count of every history table.

Examples:
  queuewait history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports training history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export training history to Parquet",
	Long: `Export all recorded sessions and pass evaluations to two Parquet files:
<output-file>.training_sessions.parquet and <output-file>.pass_evaluations.parquet

Requires: --output-file

Examples:
  queuewait history export --history-backend sqlite --output-file history
  duckdb -c "SELECT pass, model_mean_abs_minutes FROM 'history.pass_evaluations.parquet'"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export training history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the training history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  queuewait history migrate --history-backend postgresql

  # Roll back everything
  queuewait history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
