package commands

import (
	"github.com/spf13/cobra"
)

var (
	withdrawName     string
	withdrawAccount  int32
	withdrawPassword string
	withdrawCurrency string
	withdrawAmount   float64
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw money from an account",
	Long: `Withdraw money from an account. The currency must match the account's
and the balance must cover the amount.

Example:
  dittobankctl withdraw --name alice --account 10001 --currency SGD --amount 10`,
	RunE: runWithdraw,
}

func init() {
	withdrawCmd.Flags().StringVar(&withdrawName, "name", "", "account holder name (required)")
	withdrawCmd.Flags().Int32Var(&withdrawAccount, "account", 0, "account number (required)")
	withdrawCmd.Flags().StringVar(&withdrawPassword, "password", "", "account password (prompted if omitted)")
	withdrawCmd.Flags().StringVar(&withdrawCurrency, "currency", "CNY", "amount currency: CNY or SGD")
	withdrawCmd.Flags().Float64Var(&withdrawAmount, "amount", 0, "amount to withdraw (required)")
	_ = withdrawCmd.MarkFlagRequired("name")
	_ = withdrawCmd.MarkFlagRequired("account")
	_ = withdrawCmd.MarkFlagRequired("amount")
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	return runAmountOp("WITHDRAW", withdrawName, withdrawAccount, withdrawPassword, withdrawCurrency, withdrawAmount)
}
