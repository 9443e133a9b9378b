// Package commands implements the CLI commands for the dittobank server.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dittobank",
	Short: "DittoBank - distributed banking over UDP",
	Long: `DittoBank serves a teaching distributed banking system over a binary UDP
protocol. Clients choose at-least-once or at-most-once invocation semantics
per request, and the server can simulate datagram loss in both directions to
make the difference between the two observable.

Use "dittobank [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, ~/.dittobank/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (DEBUG, INFO, WARN, ERROR)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
