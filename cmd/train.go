package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuewait/core"
	"github.com/huangsam/queuewait/internal/contract"
)

// trainCmd trains one model over recorded runs.
var trainCmd = &cobra.Command{
	Use:   "train <data-dir> <model>",
	Short: "Train a model on recorded runs, saving it after every pass.",
	Long: `Window every run in the data directory into training examples and train the
model on them.

Each pass stops on exactly one rule: --timer (default 10s), --epochs or --mse.
With --loop (the default) passes repeat until interrupted or until
--iterations is reached. --mse always runs a single pass. The model file is
overwritten after every pass, also when the pass is cut short by Ctrl-C.

With a history backend configured, the session and the error after every pass
are recorded.

Examples:
  # Train in 30 second passes until Ctrl-C
  queuewait train data/ models/10-6-2-4-1.json --timer 30s

  # Five passes of 2000 epochs, reporting the error every 500
  queuewait train data/ wait.json --epochs 2000 --iterations 5 --logging-err-rate 500

  # Record the session
  queuewait train data/ wait.json --history-backend sqlite`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrain(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot train model", err)
		}
	},
}
