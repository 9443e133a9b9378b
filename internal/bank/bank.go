// Package bank implements the in-memory account store behind the DittoBank
// server: account lifecycle, balance operations, and authentication.
//
// All state is volatile. A server restart loses every account, which is the
// point of the lab: the interesting durability questions live in the
// protocol layer, not the store.
//
// Every operation applies its failure checks in one fixed priority order:
//
//	1. existence (missing or closed account)    → ErrNotFound
//	2. authentication (name + password)         → ErrAuth
//	3. currency (operation vs account currency) → ErrCurrencyMismatch
//	4. argument sanity (amounts, same-account)  → ErrBadRequest
//	5. funds                                    → ErrInsufficientFunds
//
// so a caller probing a nonexistent account with a wrong password always
// sees ErrNotFound, never ErrAuth.
package bank

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// FirstAccountNo is the number assigned to the first opened account.
// Numbers are assigned sequentially and never reused, even after close.
const FirstAccountNo = 10001

// Account is a point-in-time snapshot of one account. The password hash
// never leaves the package.
type Account struct {
	AccountNo int32
	Name      string
	Currency  dbp.Currency
	Balance   float64
	Closed    bool

	passwordHash string
}

// Bank is the account store. The datagram loop is the only writer in
// practice; the read/write lock exists so the admin API can take consistent
// read-only snapshots from its own goroutine.
type Bank struct {
	mu       sync.RWMutex
	accounts map[int32]*Account
	nextNo   int32
}

// New creates an empty Bank.
func New() *Bank {
	return &Bank{
		accounts: make(map[int32]*Account),
		nextNo:   FirstAccountNo,
	}
}

// Open creates a new account and returns its number and starting balance.
//
// The password must be 1..16 bytes (ErrPasswordFormat) and the initial
// balance non-negative (ErrBadRequest). The currency value is stored as
// given; deposits and withdrawals will reject mismatches later.
func (b *Bank) Open(name, password string, currency dbp.Currency, initial float64) (int32, float64, error) {
	if err := ValidatePassword(password); err != nil {
		return 0, 0, err
	}
	if initial < 0 {
		return 0, 0, fmt.Errorf("%w: initial balance cannot be negative", ErrBadRequest)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, 0, fmt.Errorf("hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	accountNo := b.nextNo
	b.nextNo++
	b.accounts[accountNo] = &Account{
		AccountNo:    accountNo,
		Name:         name,
		Currency:     currency,
		Balance:      initial,
		passwordHash: hash,
	}
	return accountNo, initial, nil
}

// Close marks an account closed. Closing is monotonic: a closed account is
// treated as not found by every subsequent operation, including Close.
func (b *Bank) Close(name string, accountNo int32, password string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	account, err := b.authenticated(name, accountNo, password)
	if err != nil {
		return err
	}
	account.Closed = true
	return nil
}

// Deposit adds amount to the account and returns the new balance.
func (b *Bank) Deposit(name string, accountNo int32, password string, currency dbp.Currency, amount float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	account, err := b.authenticated(name, accountNo, password)
	if err != nil {
		return 0, err
	}
	if account.Currency != currency {
		return 0, ErrCurrencyMismatch
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}

	account.Balance += amount
	return account.Balance, nil
}

// Withdraw removes amount from the account and returns the new balance.
func (b *Bank) Withdraw(name string, accountNo int32, password string, currency dbp.Currency, amount float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	account, err := b.authenticated(name, accountNo, password)
	if err != nil {
		return 0, err
	}
	if account.Currency != currency {
		return 0, ErrCurrencyMismatch
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}
	if account.Balance < amount {
		return 0, ErrInsufficientFunds
	}

	account.Balance -= amount
	return account.Balance, nil
}

// Balance returns the account currency and current balance.
func (b *Bank) Balance(name string, accountNo int32, password string) (dbp.Currency, float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	account, err := b.authenticated(name, accountNo, password)
	if err != nil {
		return 0, 0, err
	}
	return account.Currency, account.Balance, nil
}

// Transfer atomically moves amount from one account to another and returns
// both new balances. Authentication is against the source account. On any
// failure neither balance changes.
func (b *Bank) Transfer(name string, fromNo int32, password string, toNo int32, currency dbp.Currency, amount float64) (float64, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from, ok := b.lookup(fromNo)
	if !ok {
		return 0, 0, fmt.Errorf("%w: source account", ErrNotFound)
	}
	to, ok := b.lookup(toNo)
	if !ok {
		return 0, 0, fmt.Errorf("%w: destination account", ErrNotFound)
	}
	if from.Name != name || !verifyPassword(password, from.passwordHash) {
		return 0, 0, ErrAuth
	}
	if from.Currency != currency || to.Currency != currency {
		return 0, 0, ErrCurrencyMismatch
	}
	if amount <= 0 {
		return 0, 0, fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}
	if fromNo == toNo {
		return 0, 0, fmt.Errorf("%w: cannot transfer to the same account", ErrBadRequest)
	}
	if from.Balance < amount {
		return 0, 0, ErrInsufficientFunds
	}

	from.Balance -= amount
	to.Balance += amount
	return from.Balance, to.Balance, nil
}

// Get returns a snapshot of the account, open or closed. The second return
// is false only if the number was never assigned. Used by the server to
// read callback details and by the admin API for listings.
func (b *Bank) Get(accountNo int32) (Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	account, ok := b.accounts[accountNo]
	if !ok {
		return Account{}, false
	}
	return *account, true
}

// Accounts returns snapshots of every account ever opened, sorted by
// account number.
func (b *Bank) Accounts() []Account {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Account, 0, len(b.accounts))
	for _, account := range b.accounts {
		out = append(out, *account)
	}
	slices.SortFunc(out, func(a, b Account) int {
		return cmp.Compare(a.AccountNo, b.AccountNo)
	})
	return out
}

// Count returns the number of accounts ever opened, including closed ones.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.accounts)
}

// lookup finds an open account. Callers must hold at least the read lock.
func (b *Bank) lookup(accountNo int32) (*Account, bool) {
	account, ok := b.accounts[accountNo]
	if !ok || account.Closed {
		return nil, false
	}
	return account, true
}

// authenticated resolves an open account and verifies its credentials,
// preserving the existence-before-authentication check order. Callers must
// hold at least the read lock.
func (b *Bank) authenticated(name string, accountNo int32, password string) (*Account, error) {
	account, ok := b.lookup(accountNo)
	if !ok {
		return nil, ErrNotFound
	}
	if account.Name != name || !verifyPassword(password, account.passwordHash) {
		return nil, ErrAuth
	}
	return account, nil
}
