package cmd

import (
	"github.com/huangsam/codescore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the codescore MCP server",
	Long: `Launch an MCP server over stdio that allows AI agents to score code,
detect smells and browse stored analyses via standard tools.

Logs go to stderr so stdout stays reserved for the protocol.`,
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		return mcp.StartMCPServer(cmd.Context(), a.analyzer, a.detector, a.store, version)
	},
}
