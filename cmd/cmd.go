// Package cmd defines the command-line interface for queuewait.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Report every skipped file and run on stderr")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Run cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Training history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for training history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of newCmd to Viper
	newCmd.Flags().String("path", "", "File to write the new model to")
	newCmd.Flags().String("dir", "", "Directory to write the new model to, named after its layers")
	newCmd.Flags().Bool("force", false, "Overwrite an existing model file")
	if err := viper.BindPFlags(newCmd.Flags()); err != nil {
		contract.LogFatal("Error binding new flags", err)
	}

	// Bind all flags of trainCmd to Viper
	trainCmd.Flags().Bool("loop", true, "Keep running passes until interrupted (ignored with --mse)")
	trainCmd.Flags().Bool("logging", true, "Print the model and baseline error before every pass")
	trainCmd.Flags().Int("logging-err-rate", 0, "Report the training error every N epochs (0 = off)")
	trainCmd.Flags().String("timer", "", "Stop each pass after this long (seconds or a duration like 90s), default 10s")
	trainCmd.Flags().Int("epochs", 0, "Stop each pass after this many epochs")
	trainCmd.Flags().Float64("mse", 0, "Stop training once the mean squared error drops below this")
	trainCmd.Flags().Float64("momentum", contract.DefaultMomentum, "Momentum of the weight updates")
	trainCmd.Flags().Float64("rate", contract.DefaultRate, "Learning rate")
	trainCmd.Flags().Int("iterations", 0, "Number of passes when looping (0 = until interrupted)")
	if err := viper.BindPFlags(trainCmd.Flags()); err != nil {
		contract.LogFatal("Error binding train flags", err)
	}

	// Bind all flags of estimateCmd to Viper
	estimateCmd.Flags().Int("position", 0, "Current position in the queue")
	estimateCmd.Flags().Int("length", 0, "Current length of the queue")
	estimateCmd.Flags().StringSlice("model", nil, "Model files to ask alongside the baseline")
	if err := viper.BindPFlags(estimateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding estimate flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
