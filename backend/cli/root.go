package cli

import (
	"fmt"
	"os"

	"github.com/PhilHem/netlog/backend/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netlog",
	Short: "netlog - network log ingestion and query service",
	Long: `netlog records network log entries (source IP, destination, timestamp)
into a relational database or an append-only text file and serves
range and source-IP queries over either backend.

Without a subcommand it runs "serve". Configuration is read from
config.yaml, .env and the environment.`,
	Args:         cobra.NoArgs,
	RunE:         runServe,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
