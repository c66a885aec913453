package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policylens/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a policy document over MCP",
	Long: `Start a Model Context Protocol server that answers questions about one
policy document. AI assistants call the ask_policy tool; the document text
and answer history are exposed as resources.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start a streamable HTTP server instead.

Examples:
  # Stdio mode (for desktop assistants)
  policylens mcp serve policy.pdf

  # HTTP mode (for MCP Inspector, remote access)
  policylens mcp serve policy.pdf --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "policylens": {
        "command": "/path/to/policylens",
        "args": ["mcp", "serve", "/path/to/policy.pdf"]
      }
    }
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("strict", false, "fail when a provider credential is missing")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("getting strict flag: %w", err)
	}

	rt, err := openRuntime(cmd, RuntimeOptions{Strict: strict})
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt.watch(ctx)

	session, err := rt.Answers.Open(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	server, err := mcp.NewServer(&mcp.Ports{Session: session, History: historyService})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// stdout carries the protocol in stdio mode only, so HTTP mode may announce itself there.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
