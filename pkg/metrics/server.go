package metrics

import (
	"time"
)

// Drop kinds recorded by RecordDrop.
const (
	DropKindRequest = "request"
	DropKindReply   = "reply"
)

// ServerMetrics provides observability for the UDP bank server.
//
// Implementations can collect metrics about request dispatch, simulated
// datagram loss, duplicate suppression, and monitor callbacks. This
// interface is optional - pass nil to disable metrics collection with
// zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	srv := server.New(cfg, bank, prometheus.NewServerMetrics())
//
//	// Without metrics (pass nil for zero overhead)
//	srv := server.New(cfg, bank, nil)
type ServerMetrics interface {
	// RecordRequest records a completed request with its operation name,
	// reply status, and processing duration.
	//
	// Parameters:
	//   - op: operation name (e.g., "OPEN", "DEPOSIT", "TRANSFER")
	//   - status: reply status name (e.g., "OK", "ERR_AUTH")
	//   - duration: time taken to execute the request
	RecordRequest(op string, status string, duration time.Duration)

	// RecordDrop records a datagram discarded by the loss simulation.
	//
	// Parameters:
	//   - kind: DropKindRequest or DropKindReply
	RecordDrop(kind string)

	// RecordDedupHit records a duplicate request answered from the
	// cached-reply table instead of being re-executed.
	RecordDedupHit()

	// RecordCallback records a callback datagram sent to a monitor.
	RecordCallback()

	// SetActiveMonitors updates the current number of registered monitor
	// subscriptions.
	SetActiveMonitors(count int)
}

// Nop returns a ServerMetrics implementation that discards every
// observation. Callers that accept an optional ServerMetrics can
// substitute it for nil to avoid guarding every call site.
func Nop() ServerMetrics {
	return nopServerMetrics{}
}

type nopServerMetrics struct{}

func (nopServerMetrics) RecordRequest(string, string, time.Duration) {}
func (nopServerMetrics) RecordDrop(string)                           {}
func (nopServerMetrics) RecordDedupHit()                             {}
func (nopServerMetrics) RecordCallback()                             {}
func (nopServerMetrics) SetActiveMonitors(int)                       {}
