package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/cli/prompt"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

var (
	transferName     string
	transferFrom     int32
	transferTo       int32
	transferPassword string
	transferCurrency string
	transferAmount   float64
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer money between accounts",
	Long: `Transfer money from one account to another. The holder name and
password authenticate the source account; both accounts must use the
transfer currency.

Example:
  dittobankctl transfer --name alice --from 10001 --to 10002 --currency SGD --amount 15`,
	RunE: runTransfer,
}

func init() {
	transferCmd.Flags().StringVar(&transferName, "name", "", "source account holder name (required)")
	transferCmd.Flags().Int32Var(&transferFrom, "from", 0, "source account number (required)")
	transferCmd.Flags().Int32Var(&transferTo, "to", 0, "destination account number (required)")
	transferCmd.Flags().StringVar(&transferPassword, "password", "", "source account password (prompted if omitted)")
	transferCmd.Flags().StringVar(&transferCurrency, "currency", "CNY", "amount currency: CNY or SGD")
	transferCmd.Flags().Float64Var(&transferAmount, "amount", 0, "amount to transfer (required)")
	_ = transferCmd.MarkFlagRequired("name")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
}

func runTransfer(cmd *cobra.Command, args []string) error {
	currency, err := dbp.ParseCurrency(transferCurrency)
	if err != nil {
		return err
	}

	password := transferPassword
	if password == "" {
		if password, err = prompt.Password("Password"); err != nil {
			return err
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	reply, err := client.Transfer(transferName, transferFrom, password, transferTo, currency, transferAmount)
	if err != nil {
		return err
	}

	p := output.DefaultPrinter()
	p.Success("transfer completed")
	return p.Receipt(output.NewReceipt().
		Add("Operation", "TRANSFER").
		AddAccount("From account", transferFrom).
		AddAccount("To account", transferTo).
		AddMoney("Amount", transferAmount, currency.String()).
		AddMoney("From balance", reply.FromBalance, currency.String()).
		AddMoney("To balance", reply.ToBalance, currency.String()))
}
