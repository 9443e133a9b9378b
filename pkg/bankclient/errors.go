package bankclient

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// ErrTimeout is returned when a call exhausts its retry budget without
// receiving a matching reply. It means the outcome is unknown: under
// at-least-once semantics the operation may have executed on the server.
var ErrTimeout = errors.New("request failed after retries")

// StatusError is a non-OK reply status. It is the server's definitive
// answer for this request and is never retried.
type StatusError struct {
	Op     dbp.OpCode
	Status dbp.Status
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status.Message())
}

// IsNotFound returns true if the server did not find the account.
func (e *StatusError) IsNotFound() bool {
	return e.Status == dbp.StatusNotFound
}

// IsAuthError returns true if name or password did not match.
func (e *StatusError) IsAuthError() bool {
	return e.Status == dbp.StatusAuth
}

// IsInsufficientFunds returns true if the balance could not cover the
// operation.
func (e *StatusError) IsInsufficientFunds() bool {
	return e.Status == dbp.StatusInsufficientFunds
}
