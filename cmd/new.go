package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuewait/core"
	"github.com/huangsam/queuewait/internal/contract"
)

// newCmd creates a freshly initialized model.
var newCmd = &cobra.Command{
	Use:   "new <layers>",
	Short: "Create a new untrained model file.",
	Long: `Create a feedforward network with random weights and save it as JSON.

Layers are given input first, separated by dashes. The input layer must have
10 neurons (the encoded features) and the output layer exactly 1.

Examples:
  # Write models/10-6-2-4-1.json
  queuewait new 10-6-2-4-1 --dir models

  # Write to an explicit path, replacing an existing file
  queuewait new 10-8-1 --path wait.json --force`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNew(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot create model", err)
		}
	},
}
