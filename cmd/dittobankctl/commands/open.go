package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/cli/prompt"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

var (
	openName     string
	openPassword string
	openCurrency string
	openAmount   float64
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a new account",
	Long: `Open a new account and print the assigned account number.

The password authenticates every later operation on the account and is
limited to 16 bytes. When --password is omitted it is prompted for twice.

Examples:
  dittobankctl open --name alice --currency SGD --amount 100
  dittobankctl open --name bob --currency CNY --amount 250 --password s3cret`,
	RunE: runOpen,
}

func init() {
	openCmd.Flags().StringVar(&openName, "name", "", "account holder name (required)")
	openCmd.Flags().StringVar(&openPassword, "password", "", "account password (prompted if omitted)")
	openCmd.Flags().StringVar(&openCurrency, "currency", "CNY", "account currency: CNY or SGD")
	openCmd.Flags().Float64Var(&openAmount, "amount", 0, "initial deposit")
	_ = openCmd.MarkFlagRequired("name")
}

func runOpen(cmd *cobra.Command, args []string) error {
	currency, err := dbp.ParseCurrency(openCurrency)
	if err != nil {
		return err
	}

	password := openPassword
	if password == "" {
		if password, err = prompt.NewPassword("Password"); err != nil {
			return err
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	reply, err := client.Open(openName, password, currency, openAmount)
	if err != nil {
		return err
	}

	p := output.DefaultPrinter()
	p.Success("account opened")
	return p.Receipt(output.NewReceipt().
		Add("Operation", "OPEN").
		AddAccount("Account", reply.AccountNo).
		Add("Holder", openName).
		Add("Currency", currency.String()).
		AddMoney("Balance", reply.Balance, currency.String()))
}
