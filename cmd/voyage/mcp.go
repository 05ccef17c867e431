package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/voyage"
	"github.com/aretw0/voyage/internal/cli"
	"github.com/aretw0/voyage/pkg/adapters/mcp"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes planning sessions as MCP tools (start_trip, get_session, submit_input,
list_sessions) so AI agents can drive the pipeline.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		planner, logger, err := cli.NewPlanner(setupFromFlags(cmd))
		if err != nil {
			return err
		}
		defer planner.Close()

		srv := mcp.NewServer(planner, planner.Sessions(), voyage.Version, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Keep logs off stdout, which carries JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting voyage mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			signals := runner.NewSignalManager(cmd.Context())
			defer signals.Stop()
			addr := fmt.Sprintf(":%d", port)
			return srv.ServeSSE(signals.Context(), addr, fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
