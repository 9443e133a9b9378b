package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/cli/prompt"
)

var (
	closeName     string
	closeAccount  int32
	closePassword string
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close an account",
	Long: `Close an account. The holder name and password must match the ones
given when the account was opened.

Example:
  dittobankctl close --name alice --account 10001`,
	RunE: runClose,
}

func init() {
	closeCmd.Flags().StringVar(&closeName, "name", "", "account holder name (required)")
	closeCmd.Flags().Int32Var(&closeAccount, "account", 0, "account number (required)")
	closeCmd.Flags().StringVar(&closePassword, "password", "", "account password (prompted if omitted)")
	_ = closeCmd.MarkFlagRequired("name")
	_ = closeCmd.MarkFlagRequired("account")
}

func runClose(cmd *cobra.Command, args []string) error {
	password := closePassword
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

	reply, err := client.CloseAccount(closeName, closeAccount, password)
	if err != nil {
		return err
	}

	p := output.DefaultPrinter()
	p.Success("account closed")
	return p.Receipt(output.NewReceipt().
		Add("Operation", "CLOSE").
		AddAccount("Account", closeAccount).
		Add("Holder", closeName).
		Add("Info", reply.Info))
}
