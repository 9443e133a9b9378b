package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
	"github.com/marmos91/dittobank/pkg/bankclient"
)

var monitorSeconds uint16

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Receive balance update callbacks",
	Long: `Register this client as a monitor and print one line per callback the
server sends while the subscription lasts. The command returns when the
window elapses or on Ctrl+C.

Callbacks are plain datagrams: with simulated reply loss some may never
arrive, and the server does not retry them.

Example:
  dittobankctl monitor --seconds 120`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().Uint16Var(&monitorSeconds, "seconds", 60, "subscription lifetime in seconds")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return watchCallbacks(client, output.DefaultPrinter(), monitorSeconds)
}

// watchCallbacks registers a monitor subscription, prints one line per
// callback for its lifetime and finishes with a received-count summary.
// Ctrl+C ends the watch early without an error.
func watchCallbacks(client *bankclient.Client, p *output.Printer, seconds uint16) error {
	reply, err := client.Monitor(seconds)
	if err != nil {
		return err
	}
	p.Println(reply.Info)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	count := 0
	err = client.Listen(ctx, time.Duration(seconds)*time.Second, func(u *dbp.CallbackUpdate) {
		count++
		p.Printf("[CALLBACK] %s account %d %s %.2f - %s\n",
			u.UpdateType, u.AccountNo, u.Currency, u.NewBalance, u.Info)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	p.Printf("monitor window closed: %d callback(s) received\n", count)
	return nil
}
