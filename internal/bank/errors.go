package bank

import "errors"

// Typed operation failures, checked in a fixed priority order by every
// operation: existence, authentication, currency, argument sanity, funds.
// The server maps each to its wire status code.
var (
	// ErrNotFound is returned when an account does not exist or has been
	// closed. Closed accounts are indistinguishable from absent ones.
	ErrNotFound = errors.New("account not found or closed")

	// ErrAuth is returned when the supplied name or password does not match
	// the account.
	ErrAuth = errors.New("authentication failed")

	// ErrCurrencyMismatch is returned when the operation currency differs
	// from the account currency.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrBadRequest is returned for invalid arguments: non-positive amounts,
	// same-account transfers, negative initial balances.
	ErrBadRequest = errors.New("invalid request arguments")

	// ErrInsufficientFunds is returned when a withdrawal or transfer exceeds
	// the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPasswordFormat is returned by Open when the password is outside
	// 1..16 bytes.
	ErrPasswordFormat = errors.New("password must be 1-16 bytes")
)
