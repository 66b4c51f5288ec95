package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuewait/core"
	"github.com/huangsam/queuewait/internal/contract"
)

// exportCmd writes windowed training examples to Parquet.
var exportCmd = &cobra.Command{
	Use:   "export <data-dir>",
	Short: "Export windowed training examples to Parquet.",
	Long: `Window every run in the data directory and write one Parquet row per
training example: source file, step, raw start and current observations,
remaining wait in milliseconds, encoded features and encoded target.

Requires: --output-file

Examples:
  queuewait export data/ --output-file examples.parquet
  duckdb -c "SELECT file_path, avg(label_ms) FROM 'examples.parquet' GROUP BY 1"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot export examples", err)
		}
	},
}
