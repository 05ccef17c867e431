package main

import (
	"github.com/aretw0/voyage/internal/cli"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes planning sessions over HTTP: start, render, submit input, export,
live diffs over SSE and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, logger, err := cli.NewPlanner(setupFromFlags(cmd))
		if err != nil {
			return err
		}
		defer planner.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = planner.Config().HTTP.Addr
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()
		return cli.Serve(signals.Context(), planner, addr, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (defaults to http.addr from config)")
}
