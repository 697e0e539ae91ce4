// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"github.com/harperreed/rehab/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Writes made through MCP are
approved automatically; the assistant host already asks before each tool call.

CONFIGURATION:

  {
    "mcpServers": {
      "rehab": {
        "command": "rehab",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_session     Record a rehab session
  list_sessions   List recent sessions, optionally filtered
  session_stats   Totals, average duration, progress scores
  check_status    Check the encryption service

AVAILABLE RESOURCES:

  rehab://recent    Last 10 sessions
  rehab://summary   Summary dashboard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(trk, mcp.WithLogger(logger))
		if err != nil {
			return err
		}
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
