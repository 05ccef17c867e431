package main

import (
	"github.com/aretw0/voyage/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the stage machine as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the planning stages. With --session, the session's history and current stage are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		planner, _, err := cli.NewPlanner(setupFromFlags(cmd))
		if err != nil {
			return err
		}
		defer planner.Close()
		return cli.PrintGraph(cmd.Context(), cmd.OutOrStdout(), planner.Sessions(), sessionID)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight this session on the diagram")
}
