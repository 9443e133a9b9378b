package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/pkg/apiclient"
)

var (
	accountsAddr   string
	accountsClosed bool
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts on a running server",
	Long: `Fetch the account listing from a running server's admin listener.
Closed accounts are hidden unless --closed is given. The listing never
includes passwords.

Examples:
  dittobank accounts
  dittobank accounts --closed
  dittobank accounts --addr 127.0.0.1:9101`,
	RunE: runAccounts,
}

func init() {
	accountsCmd.Flags().StringVar(&accountsAddr, "addr", "", "admin listener address host:port (default: from config)")
	accountsCmd.Flags().BoolVar(&accountsClosed, "closed", false, "include closed accounts")
}

func runAccounts(cmd *cobra.Command, args []string) error {
	baseURL, err := adminBaseURL(accountsAddr)
	if err != nil {
		return err
	}

	accounts, err := apiclient.New(baseURL).Accounts()
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	table := output.NewTable("ACCOUNT", "HOLDER", "CURRENCY", "BALANCE", "STATE")
	for _, a := range accounts {
		if a.Closed && !accountsClosed {
			continue
		}
		state := "open"
		if a.Closed {
			state = "closed"
		}
		table.AddRow(
			strconv.FormatInt(int64(a.AccountNo), 10),
			a.Name,
			a.Currency,
			fmt.Sprintf("%.2f", a.Balance),
			state,
		)
	}

	if table.Len() == 0 {
		fmt.Println("No accounts.")
		return nil
	}

	p := output.DefaultPrinter()
	if err := p.Table(table); err != nil {
		return err
	}
	fmt.Printf("\n%d account(s)\n", table.Len())
	return nil
}
