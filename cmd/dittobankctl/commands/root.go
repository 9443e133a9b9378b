// Package commands implements the dittobankctl CLI commands.
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/pkg/bankclient"
	"github.com/marmos91/dittobank/pkg/config"
)

// Version information set by main package
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	cfgFile     string
	flagServer  string
	flagPort    int
	flagSem     string
	flagTimeout time.Duration
	flagRetry   int
)

var rootCmd = &cobra.Command{
	Use:   "dittobankctl",
	Short: "DittoBank client",
	Long: `dittobankctl talks to a dittobank server over UDP.

Every operation is a single request/reply exchange. When a reply does not
arrive within the timeout the request is re-sent, up to the retry budget.
With --sem at-most-once the server suppresses duplicate executions; with
at-least-once a re-sent deposit may be executed twice. Run the server with
simulated datagram loss to observe the difference.

One-shot commands (open, deposit, balance, ...) print a receipt and exit.
The shell command starts an interactive session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, ~/.dittobank/config.yaml)")
	pf.StringVar(&flagServer, "server", "", "bank server address (overrides config)")
	pf.IntVar(&flagPort, "port", 0, "bank server UDP port (overrides config)")
	pf.StringVar(&flagSem, "sem", "", "invocation semantics: at-most-once or at-least-once (overrides config)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "per-attempt reply timeout (overrides config)")
	pf.IntVar(&flagRetry, "retry", 0, "send attempts before giving up (overrides config)")

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// newClient loads the configuration, applies any persistent flag overrides
// and dials the bank server. The caller owns the returned client.
func newClient() (*bankclient.Client, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// dittobankctl is interactive: receipts go to stdout, logs to stderr,
	// regardless of where the server writes its own logs.
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client := cfg.Client
	pf := rootCmd.PersistentFlags()
	if pf.Changed("server") {
		client.Server = flagServer
	}
	if pf.Changed("port") {
		client.Port = flagPort
	}
	if pf.Changed("sem") {
		client.Semantics = config.NormalizeSemantics(flagSem)
	}
	if pf.Changed("timeout") {
		client.Timeout = flagTimeout
	}
	if pf.Changed("retry") {
		client.Retry = flagRetry
	}

	return bankclient.New(bankclient.Config{
		Server:     client.Server,
		Port:       client.Port,
		AtMostOnce: client.AtMostOnce(),
		Timeout:    client.Timeout,
		Retry:      client.Retry,
	})
}
