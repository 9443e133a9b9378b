package bankclient

import (
	"fmt"

	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// Typed operation wrappers. Each builds the request body, runs one Call,
// and decodes the reply body; a non-OK status comes back as *StatusError.

// Open creates an account and returns its number and starting balance.
func (c *Client) Open(name, password string, currency dbp.Currency, initial float64) (*dbp.OpenReply, error) {
	body, err := (&dbp.OpenRequest{
		Name:     name,
		Password: password,
		Currency: currency,
		Initial:  initial,
	}).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode OPEN body: %w", err)
	}

	reply, err := c.call(dbp.OpOpen, body)
	if err != nil {
		return nil, err
	}
	return dbp.DecodeOpenReply(reply.Body)
}

// CloseAccount closes an account and returns the server's confirmation.
func (c *Client) CloseAccount(name string, accountNo int32, password string) (*dbp.CloseReply, error) {
	body, err := (&dbp.CloseRequest{
		Name:      name,
		AccountNo: accountNo,
		Password:  password,
	}).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode CLOSE body: %w", err)
	}

	reply, err := c.call(dbp.OpClose, body)
	if err != nil {
		return nil, err
	}
	return dbp.DecodeCloseReply(reply.Body)
}

// Deposit adds amount to an account and returns the new balance.
func (c *Client) Deposit(name string, accountNo int32, password string, currency dbp.Currency, amount float64) (*dbp.AmountReply, error) {
	return c.amountOp(dbp.OpDeposit, name, accountNo, password, currency, amount)
}

// Withdraw removes amount from an account and returns the new balance.
func (c *Client) Withdraw(name string, accountNo int32, password string, currency dbp.Currency, amount float64) (*dbp.AmountReply, error) {
	return c.amountOp(dbp.OpWithdraw, name, accountNo, password, currency, amount)
}

// amountOp runs DEPOSIT or WITHDRAW; the two share one body layout.
func (c *Client) amountOp(op dbp.OpCode, name string, accountNo int32, password string, currency dbp.Currency, amount float64) (*dbp.AmountReply, error) {
	body, err := (&dbp.AmountRequest{
		Name:      name,
		AccountNo: accountNo,
		Password:  password,
		Currency:  currency,
		Amount:    amount,
	}).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", op, err)
	}

	reply, err := c.call(op, body)
	if err != nil {
		return nil, err
	}
	return dbp.DecodeAmountReply(reply.Body)
}

// Balance queries an account's currency and balance.
func (c *Client) Balance(name string, accountNo int32, password string) (*dbp.QueryReply, error) {
	body, err := (&dbp.QueryRequest{
		Name:      name,
		AccountNo: accountNo,
		Password:  password,
	}).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode QUERY_BALANCE body: %w", err)
	}

	reply, err := c.call(dbp.OpQueryBalance, body)
	if err != nil {
		return nil, err
	}
	return dbp.DecodeQueryReply(reply.Body)
}

// Transfer moves amount between two accounts, authenticating as the source
// holder, and returns both new balances.
func (c *Client) Transfer(name string, fromAccount int32, password string, toAccount int32, currency dbp.Currency, amount float64) (*dbp.TransferReply, error) {
	body, err := (&dbp.TransferRequest{
		Name:        name,
		FromAccount: fromAccount,
		Password:    password,
		ToAccount:   toAccount,
		Currency:    currency,
		Amount:      amount,
	}).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode TRANSFER body: %w", err)
	}

	reply, err := c.call(dbp.OpTransfer, body)
	if err != nil {
		return nil, err
	}
	return dbp.DecodeTransferReply(reply.Body)
}

// Monitor subscribes this client's endpoint to account-update callbacks for
// the given number of seconds. Callbacks are received with Listen.
func (c *Client) Monitor(seconds uint16) (*dbp.MonitorReply, error) {
	body := (&dbp.MonitorRequest{Seconds: seconds}).Encode()

	reply, err := c.call(dbp.OpMonitorRegister, body)
	if err != nil {
		return nil, err
	}
	return dbp.DecodeMonitorReply(reply.Body)
}

// call wraps Call and converts a non-OK status into *StatusError.
func (c *Client) call(op dbp.OpCode, body []byte) (*dbp.Message, error) {
	reply, err := c.Call(op, body)
	if err != nil {
		return nil, err
	}
	if reply.Status != dbp.StatusOK {
		return nil, &StatusError{Op: op, Status: reply.Status}
	}
	return reply, nil
}
