package main

import (
	"fmt"
	"os"

	"github.com/aretw0/voyage/internal/cli"
	"github.com/aretw0/voyage/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "voyage",
	Short: "Voyage plans trips through an explicit, resumable stage pipeline",
	Long: `Voyage collects your trip details, lets you approve a shortlist of activities,
sources flights and lodging, audits the plan against your budget and composes a
day-by-day itinerary you can refine, update or quit.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the voyage config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle hooks")
	rootCmd.PersistentFlags().String("store", "", "Session store driver: memory, file or redis (overrides config)")
}

// setupFromFlags reads the persistent flags.
func setupFromFlags(cmd *cobra.Command) cli.Setup {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	store, _ := cmd.Flags().GetString("store")
	return cli.Setup{ConfigPath: configPath, Debug: debug, Store: store}
}
