package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently across
// all log statements so that server and client logs line up when compared
// side by side during loss-semantics experiments.
const (
	// ========================================================================
	// Component & Lifecycle
	// ========================================================================
	KeyComponent = "component" // Emitting subsystem: server, client, admin
	KeyBind      = "bind"      // Listen address
	KeyPort      = "port"      // Listen or peer port
	KeyAddr      = "addr"      // Full ip:port address

	// ========================================================================
	// Protocol & Invocation
	// ========================================================================
	KeyOp        = "op"         // Operation name: OPEN, DEPOSIT, TRANSFER, ...
	KeyMsgType   = "msg_type"   // Message type: Request, Reply, Callback
	KeyReqID     = "req_id"     // 64-bit request identifier
	KeyClient    = "client"     // Client endpoint (ip:port) as seen by the server
	KeySemantics = "semantics"  // Invocation semantics: at-most-once, at-least-once
	KeyStatus    = "status"     // Wire status name: OK, ERR_NOT_FOUND, ...
	KeyFlags     = "flags"      // Raw header flags
	KeyReason    = "reason"     // Why a datagram was dropped or rejected
	KeyAttempt   = "attempt"    // Client retry attempt number
	KeyRetries   = "retries"    // Configured retry budget
	KeyTimeout   = "timeout"    // Per-attempt receive timeout
	KeySessionID = "session_id" // Client session identifier

	// ========================================================================
	// Accounts & Money
	// ========================================================================
	KeyAccount     = "account"      // Account number
	KeyFromAccount = "from_account" // Transfer source account
	KeyToAccount   = "to_account"   // Transfer destination account
	KeyName        = "name"         // Account holder name
	KeyCurrency    = "currency"     // Currency code: CNY, SGD
	KeyAmount      = "amount"       // Operation amount
	KeyBalance     = "balance"      // Balance after the operation

	// ========================================================================
	// Dedup Cache & Monitors
	// ========================================================================
	KeyDedupKey  = "dedup_key"  // clientKey#requestID
	KeyDedupSize = "dedup_size" // Entries in the reply cache
	KeyMonitorID = "monitor_id" // Monitor subscription identifier
	KeyMonitors  = "monitors"   // Active monitor count
	KeySeconds   = "seconds"    // Monitor subscription lifetime
	KeyExpired   = "expired"    // Entries removed by an expiry sweep

	// ========================================================================
	// Loss Simulation
	// ========================================================================
	KeyLossReq = "loss_req" // Inbound (request) loss probability
	KeyLossRep = "loss_rep" // Outbound (reply) loss probability
	KeySeed    = "seed"     // RNG seed for reproducible runs

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// Op returns a slog.Attr for the operation name.
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// ReqID returns a slog.Attr for the request identifier.
func ReqID(id uint64) slog.Attr {
	return slog.Uint64(KeyReqID, id)
}

// Client returns a slog.Attr for the client endpoint.
func Client(addr string) slog.Attr {
	return slog.String(KeyClient, addr)
}

// Account returns a slog.Attr for an account number.
func Account(no int32) slog.Attr {
	return slog.Int(KeyAccount, int(no))
}

// Status returns a slog.Attr for a wire status name.
func Status(name string) slog.Attr {
	return slog.String(KeyStatus, name)
}

// Err returns a slog.Attr for an error, tolerating nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
