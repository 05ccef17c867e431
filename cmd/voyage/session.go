package main

import (
	"github.com/aretw0/voyage/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent planning sessions",
	Long:  `List, inspect, export and remove sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, _, err := cli.NewPlanner(setupFromFlags(cmd))
		if err != nil {
			return err
		}
		defer planner.Close()
		return cli.ListSessions(cmd.Context(), cmd.OutOrStdout(), planner.Sessions())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		export, _ := cmd.Flags().GetString("export")
		planner, _, err := cli.NewPlanner(setupFromFlags(cmd))
		if err != nil {
			return err
		}
		defer planner.Close()
		return cli.InspectSession(cmd.Context(), cmd.OutOrStdout(), planner.Sessions(), args[0], export)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planner, _, err := cli.NewPlanner(setupFromFlags(cmd))
		if err != nil {
			return err
		}
		defer planner.Close()
		return cli.RemoveSessions(cmd.Context(), cmd.OutOrStdout(), planner.Sessions(), args)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().String("export", "", "Print the itinerary document instead of the raw state: json or markdown")
}
