package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/cli/prompt"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

var (
	depositName     string
	depositAccount  int32
	depositPassword string
	depositCurrency string
	depositAmount   float64
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit money into an account",
	Long: `Deposit money into an account. The currency must match the account's.

With --sem at-least-once and a lossy server, a re-sent deposit can be
executed more than once; run it with --sem at-most-once to see the
duplicate suppressed.

Example:
  dittobankctl deposit --name alice --account 10001 --currency SGD --amount 25`,
	RunE: runDeposit,
}

func init() {
	depositCmd.Flags().StringVar(&depositName, "name", "", "account holder name (required)")
	depositCmd.Flags().Int32Var(&depositAccount, "account", 0, "account number (required)")
	depositCmd.Flags().StringVar(&depositPassword, "password", "", "account password (prompted if omitted)")
	depositCmd.Flags().StringVar(&depositCurrency, "currency", "CNY", "amount currency: CNY or SGD")
	depositCmd.Flags().Float64Var(&depositAmount, "amount", 0, "amount to deposit (required)")
	_ = depositCmd.MarkFlagRequired("name")
	_ = depositCmd.MarkFlagRequired("account")
	_ = depositCmd.MarkFlagRequired("amount")
}

func runDeposit(cmd *cobra.Command, args []string) error {
	return runAmountOp("DEPOSIT", depositName, depositAccount, depositPassword, depositCurrency, depositAmount)
}

// runAmountOp performs a DEPOSIT or WITHDRAW, which differ only in opcode
// and receipt wording.
func runAmountOp(operation, name string, accountNo int32, password, currencyCode string, amount float64) error {
	currency, err := dbp.ParseCurrency(currencyCode)
	if err != nil {
		return err
	}

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

	var reply *dbp.AmountReply
	if operation == "DEPOSIT" {
		reply, err = client.Deposit(name, accountNo, password, currency, amount)
	} else {
		reply, err = client.Withdraw(name, accountNo, password, currency, amount)
	}
	if err != nil {
		return err
	}

	p := output.DefaultPrinter()
	if operation == "DEPOSIT" {
		p.Success("deposit completed")
	} else {
		p.Success("withdrawal completed")
	}
	return p.Receipt(output.NewReceipt().
		Add("Operation", operation).
		AddAccount("Account", accountNo).
		AddMoney("Amount", amount, currency.String()).
		AddMoney("New balance", reply.NewBalance, currency.String()))
}
