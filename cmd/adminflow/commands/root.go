// Package commands implements the adminflow CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "adminflow",
	Short: "AdminFlow - membership administration API",
	Long: `AdminFlow keeps the organisation's member list authoritative and
mirrors it into the GitHub organization and the Slack workspace.

All settings are read from environment variables (see README).
Use "adminflow [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("adminflow %s (commit: %s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
