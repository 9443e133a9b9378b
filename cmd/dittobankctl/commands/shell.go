package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittobank/internal/cli/output"
	"github.com/marmos91/dittobank/internal/cli/prompt"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
	"github.com/marmos91/dittobank/pkg/bankclient"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive banking session",
	Long: `Start an interactive session against the bank server. Operations are
picked from a menu and their fields prompted for one by one.

When a request times out the shell offers to send it again; the re-send is
a fresh request, so under at-least-once semantics accepting it can execute
the operation twice on a lossy server.`,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	p := output.DefaultPrinter()
	p.Println("Connected. Pick an operation, Ctrl+C to leave.")

	for {
		choice, err := prompt.Select("Operation", shellMenu())
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		if choice == "quit" {
			return nil
		}

		if err := runShellAction(client, p, choice); err != nil {
			if prompt.IsAborted(err) {
				continue
			}
			p.Error(err.Error())
		}
	}
}

func shellMenu() []prompt.SelectOption {
	return []prompt.SelectOption{
		{Label: "Open account", Value: "open", Description: "Create an account with an initial deposit"},
		{Label: "Close account", Value: "close", Description: "Close an existing account"},
		{Label: "Deposit", Value: "deposit", Description: "Pay money into an account"},
		{Label: "Withdraw", Value: "withdraw", Description: "Take money out of an account"},
		{Label: "Balance", Value: "balance", Description: "Query an account balance"},
		{Label: "Transfer", Value: "transfer", Description: "Move money between two accounts"},
		{Label: "Monitor", Value: "monitor", Description: "Watch balance updates for a while"},
		{Label: "Quit", Value: "quit", Description: "Leave the shell"},
	}
}

func runShellAction(client *bankclient.Client, p *output.Printer, action string) error {
	switch action {
	case "open":
		return shellOpen(client, p)
	case "close":
		return shellClose(client, p)
	case "deposit":
		return shellAmountOp(client, p, "DEPOSIT")
	case "withdraw":
		return shellAmountOp(client, p, "WITHDRAW")
	case "balance":
		return shellBalance(client, p)
	case "transfer":
		return shellTransfer(client, p)
	case "monitor":
		return shellMonitor(client, p)
	default:
		return nil
	}
}

// invokeWithRetry runs one request/reply exchange and, when it times out,
// asks whether to send it again. Every accepted re-send goes out as a new
// request with a new request ID.
func invokeWithRetry(p *output.Printer, fn func() error) error {
	for {
		err := fn()
		if err == nil || !errors.Is(err, bankclient.ErrTimeout) {
			return err
		}

		p.Warning(err.Error())
		again, perr := prompt.Confirm("Send the request again", true)
		if perr != nil || !again {
			return err
		}
	}
}

func shellCurrency() (dbp.Currency, error) {
	code, err := prompt.SelectString("Currency", []string{"CNY", "SGD"})
	if err != nil {
		return 0, err
	}
	return dbp.ParseCurrency(code)
}

func shellOpen(client *bankclient.Client, p *output.Printer) error {
	name, err := prompt.InputRequired("Account holder name")
	if err != nil {
		return err
	}
	password, err := prompt.NewPassword("Password")
	if err != nil {
		return err
	}
	currency, err := shellCurrency()
	if err != nil {
		return err
	}
	amount, err := prompt.InputAmount("Initial deposit")
	if err != nil {
		return err
	}

	return invokeWithRetry(p, func() error {
		reply, err := client.Open(name, password, currency, amount)
		if err != nil {
			return err
		}
		p.Success("account opened")
		return p.Receipt(output.NewReceipt().
			Add("Operation", "OPEN").
			AddAccount("Account", reply.AccountNo).
			Add("Holder", name).
			Add("Currency", currency.String()).
			AddMoney("Balance", reply.Balance, currency.String()))
	})
}

func shellClose(client *bankclient.Client, p *output.Printer) error {
	name, err := prompt.InputRequired("Account holder name")
	if err != nil {
		return err
	}
	accountNo, err := prompt.InputAccountNo("Account number")
	if err != nil {
		return err
	}
	password, err := prompt.Password("Password")
	if err != nil {
		return err
	}

	return invokeWithRetry(p, func() error {
		reply, err := client.CloseAccount(name, accountNo, password)
		if err != nil {
			return err
		}
		p.Success("account closed")
		return p.Receipt(output.NewReceipt().
			Add("Operation", "CLOSE").
			AddAccount("Account", accountNo).
			Add("Info", reply.Info))
	})
}

func shellAmountOp(client *bankclient.Client, p *output.Printer, operation string) error {
	name, err := prompt.InputRequired("Account holder name")
	if err != nil {
		return err
	}
	accountNo, err := prompt.InputAccountNo("Account number")
	if err != nil {
		return err
	}
	password, err := prompt.Password("Password")
	if err != nil {
		return err
	}
	currency, err := shellCurrency()
	if err != nil {
		return err
	}
	amount, err := prompt.InputAmount("Amount")
	if err != nil {
		return err
	}

	return invokeWithRetry(p, func() error {
		var reply *dbp.AmountReply
		var err error
		if operation == "DEPOSIT" {
			reply, err = client.Deposit(name, accountNo, password, currency, amount)
		} else {
			reply, err = client.Withdraw(name, accountNo, password, currency, amount)
		}
		if err != nil {
			return err
		}
		p.Success("done")
		return p.Receipt(output.NewReceipt().
			Add("Operation", operation).
			AddAccount("Account", accountNo).
			AddMoney("Amount", amount, currency.String()).
			AddMoney("New balance", reply.NewBalance, currency.String()))
	})
}

func shellBalance(client *bankclient.Client, p *output.Printer) error {
	name, err := prompt.InputRequired("Account holder name")
	if err != nil {
		return err
	}
	accountNo, err := prompt.InputAccountNo("Account number")
	if err != nil {
		return err
	}
	password, err := prompt.Password("Password")
	if err != nil {
		return err
	}

	return invokeWithRetry(p, func() error {
		reply, err := client.Balance(name, accountNo, password)
		if err != nil {
			return err
		}
		return p.Receipt(output.NewReceipt().
			Add("Operation", "QUERY_BALANCE").
			AddAccount("Account", accountNo).
			Add("Currency", reply.Currency.String()).
			AddMoney("Balance", reply.Balance, reply.Currency.String()))
	})
}

func shellTransfer(client *bankclient.Client, p *output.Printer) error {
	name, err := prompt.InputRequired("Source holder name")
	if err != nil {
		return err
	}
	fromAccount, err := prompt.InputAccountNo("Source account number")
	if err != nil {
		return err
	}
	password, err := prompt.Password("Password")
	if err != nil {
		return err
	}
	toAccount, err := prompt.InputAccountNo("Destination account number")
	if err != nil {
		return err
	}
	currency, err := shellCurrency()
	if err != nil {
		return err
	}
	amount, err := prompt.InputAmount("Amount")
	if err != nil {
		return err
	}

	return invokeWithRetry(p, func() error {
		reply, err := client.Transfer(name, fromAccount, password, toAccount, currency, amount)
		if err != nil {
			return err
		}
		p.Success("transfer completed")
		return p.Receipt(output.NewReceipt().
			Add("Operation", "TRANSFER").
			AddAccount("From account", fromAccount).
			AddAccount("To account", toAccount).
			AddMoney("Amount", amount, currency.String()).
			AddMoney("From balance", reply.FromBalance, currency.String()).
			AddMoney("To balance", reply.ToBalance, currency.String()))
	})
}

func shellMonitor(client *bankclient.Client, p *output.Printer) error {
	seconds, err := prompt.InputSeconds("Monitor lifetime (seconds)")
	if err != nil {
		return err
	}
	return invokeWithRetry(p, func() error {
		return watchCallbacks(client, p, seconds)
	})
}
