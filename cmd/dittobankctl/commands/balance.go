package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/cli/prompt"
)

var (
	balanceName     string
	balanceAccount  int32
	balancePassword string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Query an account balance",
	Long: `Query the balance and currency of an account.

Example:
  dittobankctl balance --name alice --account 10001`,
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&balanceName, "name", "", "account holder name (required)")
	balanceCmd.Flags().Int32Var(&balanceAccount, "account", 0, "account number (required)")
	balanceCmd.Flags().StringVar(&balancePassword, "password", "", "account password (prompted if omitted)")
	_ = balanceCmd.MarkFlagRequired("name")
	_ = balanceCmd.MarkFlagRequired("account")
}

func runBalance(cmd *cobra.Command, args []string) error {
	password := balancePassword
	if password == "" {
		var err error
		if password, err = prompt.Password("Password"); err != nil {
			return err
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	reply, err := client.Balance(balanceName, balanceAccount, password)
	if err != nil {
		return err
	}

	p := output.DefaultPrinter()
	return p.Receipt(output.NewReceipt().
		Add("Operation", "QUERY_BALANCE").
		AddAccount("Account", balanceAccount).
		Add("Holder", balanceName).
		Add("Currency", reply.Currency.String()).
		AddMoney("Balance", reply.Balance, reply.Currency.String()))
}
