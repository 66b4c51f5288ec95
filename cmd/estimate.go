package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuewait/core"
	"github.com/huangsam/queuewait/internal/contract"
)

// estimateCmd estimates the wait of a live queue position.
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the remaining wait for a queue position.",
	Long: `Estimate how many hours a client who is at --position in a queue of --length
still has to wait, as if the session started now.

The baseline estimate is always printed. Each --model adds its own prediction.

Examples:
  queuewait estimate --position 120 --length 400
  queuewait estimate --position 120 --length 400 --model models/10-8-1.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEstimate(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot estimate wait", err)
		}
	},
}
