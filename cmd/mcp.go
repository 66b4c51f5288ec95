package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuewait/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the queuewait MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents estimate queue waits and evaluate recorded runs via standard tools.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
