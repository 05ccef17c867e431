package main

import (
	"os"
	"strings"

	"github.com/aretw0/voyage/internal/cli"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [request...]",
	Short: "Plan a trip interactively",
	Long: `Starts (or resumes) a planning session. The optional request is the first answer,
for example:

  voyage plan from: Delhi to: Tokyo start: 2026-04-10 days: 5 budget: 2000 USD

Type 'exit' to pause; the session can be resumed later with --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.RunPlan(signals.Context(), cli.PlanOptions{
			Setup:     setupFromFlags(cmd),
			SessionID: sessionID,
			Fresh:     fresh,
			JSON:      jsonMode,
			Rich:      !jsonMode && cli.IsTerminal(os.Stdout),
			Timeout:   timeout,
			Text:      strings.Join(args, " "),
			In:        os.Stdin,
			Out:       os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringP("session", "s", "", "Session ID to create or resume (generated when empty)")
	planCmd.Flags().Bool("fresh", false, "Discard stored state for the session before starting")
	planCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	planCmd.Flags().Duration("timeout", 0, "Re-ask the pending question after this long (0 waits forever)")
}
