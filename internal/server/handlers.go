package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/marmos91/dittobank/internal/bank"
	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// callbackEvent captures one account change for monitor fan-out. A TRANSFER
// produces two events, source first.
type callbackEvent struct {
	Update     dbp.OpCode
	AccountNo  int32
	Currency   dbp.Currency
	NewBalance float64
	Info       string
}

// dispatch executes one decoded request against the bank and returns the
// reply status, the encoded reply body (empty unless OK), and the callback
// events the operation generated.
//
// A request body that fails to decode is treated like an unknown opcode:
// ERR_BAD_REQUEST with an empty body.
func (s *Server) dispatch(req *dbp.Message, client *net.UDPAddr) (dbp.Status, []byte, []callbackEvent) {
	switch req.Op {
	case dbp.OpOpen:
		return s.handleOpen(req.Body)
	case dbp.OpClose:
		return s.handleClose(req.Body)
	case dbp.OpDeposit:
		return s.handleDeposit(req.Body)
	case dbp.OpWithdraw:
		return s.handleWithdraw(req.Body)
	case dbp.OpQueryBalance:
		return s.handleQueryBalance(req.Body)
	case dbp.OpTransfer:
		return s.handleTransfer(req.Body)
	case dbp.OpMonitorRegister:
		return s.handleMonitorRegister(req.Body, client)
	default:
		logger.Debug("unknown opcode", logger.Op(req.Op.String()), logger.Client(client.String()))
		return dbp.StatusBadRequest, nil, nil
	}
}

func (s *Server) handleOpen(body []byte) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeOpenRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}

	accountNo, balance, err := s.bank.Open(req.Name, req.Password, req.Currency, req.Initial)
	if err != nil {
		return statusFromError(err), nil, nil
	}

	logger.Info("account opened",
		logger.Account(accountNo),
		logger.KeyName, req.Name,
		logger.KeyCurrency, req.Currency.String(),
		logger.KeyBalance, balance)

	reply := &dbp.OpenReply{AccountNo: accountNo, Balance: balance}
	events := []callbackEvent{{
		Update:     dbp.OpOpen,
		AccountNo:  accountNo,
		Currency:   req.Currency,
		NewBalance: balance,
		Info:       "OPEN by " + req.Name,
	}}
	return dbp.StatusOK, reply.Encode(), events
}

func (s *Server) handleClose(body []byte) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeCloseRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}

	// Snapshot currency and balance before closing: the callback reports
	// the account as it was at the moment of close.
	var currency dbp.Currency
	var balance float64
	if account, ok := s.bank.Get(req.AccountNo); ok {
		currency = account.Currency
		balance = account.Balance
	}

	if err := s.bank.Close(req.Name, req.AccountNo, req.Password); err != nil {
		return statusFromError(err), nil, nil
	}

	logger.Info("account closed", logger.Account(req.AccountNo), logger.KeyName, req.Name)

	replyBody, err := (&dbp.CloseReply{Info: "account closed"}).Encode()
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}
	events := []callbackEvent{{
		Update:     dbp.OpClose,
		AccountNo:  req.AccountNo,
		Currency:   currency,
		NewBalance: balance,
		Info:       "CLOSE by " + req.Name,
	}}
	return dbp.StatusOK, replyBody, events
}

func (s *Server) handleDeposit(body []byte) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeAmountRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}

	newBalance, err := s.bank.Deposit(req.Name, req.AccountNo, req.Password, req.Currency, req.Amount)
	if err != nil {
		return statusFromError(err), nil, nil
	}

	logger.Info("deposit applied",
		logger.Account(req.AccountNo),
		logger.KeyAmount, req.Amount,
		logger.KeyBalance, newBalance)

	reply := &dbp.AmountReply{NewBalance: newBalance}
	events := []callbackEvent{{
		Update:     dbp.OpDeposit,
		AccountNo:  req.AccountNo,
		Currency:   req.Currency,
		NewBalance: newBalance,
		Info:       "DEPOSIT " + formatAmount(req.Amount) + " by " + req.Name,
	}}
	return dbp.StatusOK, reply.Encode(), events
}

func (s *Server) handleWithdraw(body []byte) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeAmountRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}

	newBalance, err := s.bank.Withdraw(req.Name, req.AccountNo, req.Password, req.Currency, req.Amount)
	if err != nil {
		return statusFromError(err), nil, nil
	}

	logger.Info("withdrawal applied",
		logger.Account(req.AccountNo),
		logger.KeyAmount, req.Amount,
		logger.KeyBalance, newBalance)

	reply := &dbp.AmountReply{NewBalance: newBalance}
	events := []callbackEvent{{
		Update:     dbp.OpWithdraw,
		AccountNo:  req.AccountNo,
		Currency:   req.Currency,
		NewBalance: newBalance,
		Info:       "WITHDRAW " + formatAmount(req.Amount) + " by " + req.Name,
	}}
	return dbp.StatusOK, reply.Encode(), events
}

func (s *Server) handleQueryBalance(body []byte) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeQueryRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}

	currency, balance, err := s.bank.Balance(req.Name, req.AccountNo, req.Password)
	if err != nil {
		return statusFromError(err), nil, nil
	}

	logger.Info("balance queried",
		logger.Account(req.AccountNo),
		logger.KeyCurrency, currency.String(),
		logger.KeyBalance, balance)

	reply := &dbp.QueryReply{Currency: currency, Balance: balance}
	return dbp.StatusOK, reply.Encode(), nil
}

func (s *Server) handleTransfer(body []byte) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeTransferRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}

	fromBalance, toBalance, err := s.bank.Transfer(req.Name, req.FromAccount, req.Password, req.ToAccount, req.Currency, req.Amount)
	if err != nil {
		return statusFromError(err), nil, nil
	}

	logger.Info("transfer applied",
		logger.KeyFromAccount, req.FromAccount,
		logger.KeyToAccount, req.ToAccount,
		logger.KeyAmount, req.Amount,
		logger.KeyBalance, fromBalance)

	reply := &dbp.TransferReply{FromBalance: fromBalance, ToBalance: toBalance}
	amount := formatAmount(req.Amount)
	events := []callbackEvent{
		{
			Update:     dbp.OpTransfer,
			AccountNo:  req.FromAccount,
			Currency:   req.Currency,
			NewBalance: fromBalance,
			Info:       "TRANSFER out " + amount + " to " + strconv.Itoa(int(req.ToAccount)) + " by " + req.Name,
		},
		{
			Update:     dbp.OpTransfer,
			AccountNo:  req.ToAccount,
			Currency:   req.Currency,
			NewBalance: toBalance,
			Info:       "TRANSFER in " + amount + " from " + strconv.Itoa(int(req.FromAccount)),
		},
	}
	return dbp.StatusOK, reply.Encode(), events
}

func (s *Server) handleMonitorRegister(body []byte, client *net.UDPAddr) (dbp.Status, []byte, []callbackEvent) {
	req, err := dbp.DecodeMonitorRequest(body)
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}
	if req.Seconds == 0 {
		return dbp.StatusBadRequest, nil, nil
	}

	ttl := time.Duration(req.Seconds) * time.Second
	entry := s.monitors.Register(client, ttl)
	s.metrics.SetActiveMonitors(s.monitors.Count())

	logger.Info("monitor registered",
		logger.KeyMonitorID, entry.ID,
		logger.Client(client.String()),
		logger.KeySeconds, req.Seconds,
		logger.KeyMonitors, s.monitors.Count())

	replyBody, err := (&dbp.MonitorReply{Info: fmt.Sprintf("monitor registered for %ds", req.Seconds)}).Encode()
	if err != nil {
		return dbp.StatusBadRequest, nil, nil
	}
	return dbp.StatusOK, replyBody, nil
}

// statusFromError maps a bank failure to its wire status code.
func statusFromError(err error) dbp.Status {
	switch {
	case errors.Is(err, bank.ErrNotFound):
		return dbp.StatusNotFound
	case errors.Is(err, bank.ErrAuth):
		return dbp.StatusAuth
	case errors.Is(err, bank.ErrCurrencyMismatch):
		return dbp.StatusCurrency
	case errors.Is(err, bank.ErrInsufficientFunds):
		return dbp.StatusInsufficientFunds
	case errors.Is(err, bank.ErrPasswordFormat):
		return dbp.StatusPasswordFormat
	default:
		return dbp.StatusBadRequest
	}
}

// formatAmount renders a monetary amount for callback info strings without
// exponent notation.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
