package server

import "sync/atomic"

// counters aggregates serve-loop activity for the stats endpoint and the
// shutdown summary. Fields are atomics because the admin API reads them
// while the loop is writing.
type counters struct {
	requestsReceived atomic.Uint64
	repliesSent      atomic.Uint64
	requestsDropped  atomic.Uint64
	repliesDropped   atomic.Uint64
	dedupHits        atomic.Uint64
	callbacksSent    atomic.Uint64
	badDatagrams     atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the server counters plus the
// derived gauges the admin API exposes.
type StatsSnapshot struct {
	// RequestsReceived counts requests that were dispatched to a handler
	// (duplicates and simulated drops excluded).
	RequestsReceived uint64 `json:"requests_received"`

	// RepliesSent counts reply datagrams that actually left the socket.
	RepliesSent uint64 `json:"replies_sent"`

	// RequestsDropped counts inbound datagrams discarded by the loss
	// simulation.
	RequestsDropped uint64 `json:"requests_dropped"`

	// RepliesDropped counts outbound replies discarded by the loss
	// simulation, including replays of cached replies.
	RepliesDropped uint64 `json:"replies_dropped"`

	// DedupHits counts at-most-once retransmits answered from the reply
	// cache without re-executing the operation.
	DedupHits uint64 `json:"dedup_hits"`

	// CallbacksSent counts monitor callback datagrams sent.
	CallbacksSent uint64 `json:"callbacks_sent"`

	// BadDatagrams counts datagrams dropped because they failed to decode
	// or carried the wrong version or message type.
	BadDatagrams uint64 `json:"bad_datagrams"`

	// ActiveMonitors is the number of live callback subscriptions.
	ActiveMonitors int `json:"active_monitors"`

	// Accounts is the number of open accounts.
	Accounts int `json:"accounts"`
}
