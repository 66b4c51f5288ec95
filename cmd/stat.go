package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuewait/core"
	"github.com/huangsam/queuewait/internal/contract"
)

// statCmd compares models and the baseline against recorded runs.
var statCmd = &cobra.Command{
	Use:   "stat <data-dir> [models...]",
	Short: "Compare trained models with the baseline over recorded runs.",
	Long: `Load every observation log in a directory and ask each estimator how long
the run would take from its first observation.

For every run it prints the prediction in hours and the signed difference from
the real wait in minutes. For every estimator it prints the mean absolute
("abs") and mean signed ("avg") difference. The baseline is always included.

Files that cannot be parsed, and runs with fewer than two observations, are
skipped. Use --verbose to see why.

Examples:
  # Baseline only
  queuewait stat data/

  # Two models side by side
  queuewait stat data/ models/10-6-2-4-1.json models/10-8-1.json

  # Machine readable
  queuewait stat data/ models/10-8-1.json --output json --output-file stat.json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStat(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run stat", err)
		}
	},
}
