// Package dbp implements the DittoBank wire protocol (DBP).
//
// DBP is a length-framed binary datagram protocol carried over UDP. Every
// datagram starts with a fixed 24-byte header; all multi-byte integers are
// big-endian (network byte order):
//
//	0        4    5    6      8      10     12              20       24
//	┌────────┬────┬────┬──────┬──────┬──────┬───────────────┬────────┬──────────┐
//	│ magic  │ver │type│opCode│flags │status│   requestID   │bodyLen │ body ... │
//	│ uint32 │ u8 │ u8 │ u16  │ u16  │ u16  │    uint64     │ uint32 │          │
//	└────────┴────┴────┴──────┴──────┴──────┴───────────────┴────────┴──────────┘
//
// The body layout is determined by (opCode, msgType); see the per-operation
// request/reply structs in bodies.go. Strings are encoded with a 2-byte
// length prefix, passwords as a fixed 16-byte zero-padded field, and doubles
// as the big-endian bit pattern of their IEEE-754 representation.
package dbp

import "fmt"

// Magic is the protocol tag at the start of every datagram ("BANK" in ASCII).
const Magic uint32 = 0x42414E4B

// Version is the only protocol version this implementation speaks.
const Version uint8 = 1

// HeaderSize is the fixed header length in bytes.
const HeaderSize = 24

// MaxStringLen is the longest encodable string (2-byte length prefix).
const MaxStringLen = 65535

// PasswordFieldSize is the fixed on-wire size of a password field.
// Shorter passwords are padded with trailing zero bytes.
const PasswordFieldSize = 16

// FlagAtMostOnce requests at-most-once invocation semantics: the server
// caches the encoded reply and replays it verbatim for retransmits of the
// same (client endpoint, requestID) within the dedup window. All other flag
// bits are reserved and must be zero.
const FlagAtMostOnce uint16 = 0x0001

// MsgType distinguishes requests, replies, and unsolicited callbacks.
type MsgType uint8

const (
	MsgRequest  MsgType = 1 // client → server invocation
	MsgReply    MsgType = 2 // server → client answer, pairs by requestID
	MsgCallback MsgType = 3 // server → client monitor notification
)

// String returns the short name of the message type.
func (t MsgType) String() string {
	switch t {
	case MsgRequest:
		return "Request"
	case MsgReply:
		return "Reply"
	case MsgCallback:
		return "Callback"
	default:
		return fmt.Sprintf("MsgType(%d)", uint8(t))
	}
}

// OpCode identifies the banking operation a request invokes. Callbacks use
// OpCallbackUpdate and carry the triggering opcode in their body instead.
type OpCode uint16

const (
	OpOpen            OpCode = 1
	OpClose           OpCode = 2
	OpDeposit         OpCode = 3
	OpWithdraw        OpCode = 4
	OpMonitorRegister OpCode = 5
	OpQueryBalance    OpCode = 6
	OpTransfer        OpCode = 7

	// OpCallbackUpdate is the opcode of every monitor callback datagram.
	OpCallbackUpdate OpCode = 100
)

// String returns the canonical operation name.
func (op OpCode) String() string {
	switch op {
	case OpOpen:
		return "OPEN"
	case OpClose:
		return "CLOSE"
	case OpDeposit:
		return "DEPOSIT"
	case OpWithdraw:
		return "WITHDRAW"
	case OpMonitorRegister:
		return "MONITOR_REGISTER"
	case OpQueryBalance:
		return "QUERY_BALANCE"
	case OpTransfer:
		return "TRANSFER"
	case OpCallbackUpdate:
		return "CALLBACK_UPDATE"
	default:
		return fmt.Sprintf("OP_%d", uint16(op))
	}
}

// Mutating reports whether a successful execution of the operation changes
// account state and therefore triggers monitor callbacks.
func (op OpCode) Mutating() bool {
	switch op {
	case OpOpen, OpClose, OpDeposit, OpWithdraw, OpTransfer:
		return true
	default:
		return false
	}
}

// Status is the result code carried in every reply header. Non-OK replies
// have an empty body.
type Status uint16

const (
	StatusOK                Status = 0
	StatusBadRequest        Status = 1
	StatusAuth              Status = 2
	StatusNotFound          Status = 3
	StatusCurrency          Status = 4
	StatusInsufficientFunds Status = 5
	StatusPasswordFormat    Status = 6
)

// String returns the wire-level status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "ERR_BAD_REQUEST"
	case StatusAuth:
		return "ERR_AUTH"
	case StatusNotFound:
		return "ERR_NOT_FOUND"
	case StatusCurrency:
		return "ERR_CURRENCY"
	case StatusInsufficientFunds:
		return "ERR_INSUFFICIENT_FUNDS"
	case StatusPasswordFormat:
		return "ERR_PASSWORD_FORMAT"
	default:
		return fmt.Sprintf("STATUS_%d", uint16(s))
	}
}

// Message returns the human-readable description shown to users.
func (s Status) Message() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Malformed or invalid request (BAD_REQUEST)"
	case StatusAuth:
		return "Authentication failed (AUTH)"
	case StatusNotFound:
		return "Account not found or already closed (NOT_FOUND)"
	case StatusCurrency:
		return "Currency mismatch (CURRENCY)"
	case StatusInsufficientFunds:
		return "Insufficient funds (INSUFFICIENT_FUNDS)"
	case StatusPasswordFormat:
		return "Password must be 1-16 bytes (PASSWORD_FORMAT)"
	default:
		return fmt.Sprintf("Unknown status %d", uint16(s))
	}
}

// Currency is the ISO-less two-value currency space of the lab bank.
type Currency uint16

const (
	CurrencyCNY Currency = 0
	CurrencySGD Currency = 1
)

// String returns the currency code.
func (c Currency) String() string {
	switch c {
	case CurrencyCNY:
		return "CNY"
	case CurrencySGD:
		return "SGD"
	default:
		return fmt.Sprintf("CUR_%d", uint16(c))
	}
}

// ParseCurrency converts a currency code ("CNY", "SGD", case-insensitive
// handled by the caller) into its wire value.
func ParseCurrency(s string) (Currency, error) {
	switch s {
	case "CNY", "cny":
		return CurrencyCNY, nil
	case "SGD", "sgd":
		return CurrencySGD, nil
	default:
		return 0, fmt.Errorf("dbp: unknown currency %q", s)
	}
}

// ValidCurrency reports whether the wire value names a known currency.
func ValidCurrency(c Currency) bool {
	return c == CurrencyCNY || c == CurrencySGD
}
