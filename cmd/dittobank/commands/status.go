package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/timeutil"
	"github.com/marmos91/dittobank/pkg/apiclient"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Check a running server through its admin listener and display health,
uptime and the datagram counters.

Examples:
  # Check the server configured in config.yaml
  dittobank status

  # Check a server with a non-default admin listener
  dittobank status --addr 127.0.0.1:9101`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "admin listener address host:port (default: from config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseURL, err := adminBaseURL(statusAddr)
	if err != nil {
		return err
	}

	client := apiclient.New(baseURL)

	health, err := client.Health()
	if err != nil {
		printStoppedStatus(baseURL, err)
		return nil
	}

	stats, err := client.Stats()
	if err != nil {
		return fmt.Errorf("failed to fetch server stats: %w", err)
	}

	fmt.Println()
	fmt.Println("DittoBank Server Status")
	fmt.Println("=======================")
	fmt.Println()
	fmt.Printf("  Status:     \033[32m● Running\033[0m\n")
	fmt.Printf("  Admin:      %s\n", baseURL)
	fmt.Printf("  Started:    %s\n", timeutil.FormatTime(health.StartedAt))
	fmt.Printf("  Uptime:     %s\n", timeutil.FormatUptime(health.Uptime))
	fmt.Println()
	fmt.Printf("  Requests received:  %d\n", stats.RequestsReceived)
	fmt.Printf("  Replies sent:       %d\n", stats.RepliesSent)
	fmt.Printf("  Requests dropped:   %d\n", stats.RequestsDropped)
	fmt.Printf("  Replies dropped:    %d\n", stats.RepliesDropped)
	fmt.Printf("  Dedup hits:         %d\n", stats.DedupHits)
	fmt.Printf("  Callbacks sent:     %d\n", stats.CallbacksSent)
	fmt.Printf("  Bad datagrams:      %d\n", stats.BadDatagrams)
	fmt.Printf("  Active monitors:    %d\n", stats.ActiveMonitors)
	fmt.Printf("  Open accounts:      %d\n", stats.Accounts)
	fmt.Println()

	return nil
}

// printStoppedStatus reports an unreachable admin listener. Unreachable is
// a status result, not a command failure, so the command still exits 0.
func printStoppedStatus(baseURL string, err error) {
	fmt.Println()
	fmt.Println("DittoBank Server Status")
	fmt.Println("=======================")
	fmt.Println()
	fmt.Printf("  Status:     \033[31m○ Stopped\033[0m\n")
	fmt.Printf("  Admin:      %s\n", baseURL)
	fmt.Println()

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		fmt.Printf("  Admin listener answered but is unhealthy: %s\n", apiErr.Message)
	} else {
		fmt.Println("  Server is not running or the admin listener is disabled.")
	}
	fmt.Println()
}
