package server

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MonitorEntry is one callback subscription: a client endpoint that wants a
// datagram for every successful mutating operation until ExpiresAt.
//
// Multiple registrations from the same endpoint are independent entries and
// each receives its own callback copy.
type MonitorEntry struct {
	// ID identifies the subscription in logs.
	ID string

	// Addr is the endpoint callbacks are sent to, as observed on the
	// server socket when the MONITOR_REGISTER request arrived.
	Addr *net.UDPAddr

	// ExpiresAt is when the subscription lapses.
	ExpiresAt time.Time
}

// monitorRegistry is a thread-safe list of callback subscriptions kept in
// registration order. Fan-out iterates that order, so callbacks generated
// by one server operation reach monitors oldest-subscription first.
type monitorRegistry struct {
	mu      sync.RWMutex
	entries []MonitorEntry
}

// newMonitorRegistry creates an empty registry.
func newMonitorRegistry() *monitorRegistry {
	return &monitorRegistry{}
}

// Register appends a subscription for addr lasting ttl and returns it.
func (r *monitorRegistry) Register(addr *net.UDPAddr, ttl time.Duration) MonitorEntry {
	entry := MonitorEntry{
		ID:        uuid.NewString(),
		Addr:      addr,
		ExpiresAt: time.Now().Add(ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return entry
}

// Snapshot returns a copy of the live entries in registration order.
func (r *monitorRegistry) Snapshot() []MonitorEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]MonitorEntry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Sweep removes subscriptions that expired at or before now and returns
// the removed entries so the caller can log them.
func (r *monitorRegistry) Sweep(now time.Time) []MonitorEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []MonitorEntry
	live := r.entries[:0]
	for _, entry := range r.entries {
		if entry.ExpiresAt.After(now) {
			live = append(live, entry)
		} else {
			expired = append(expired, entry)
		}
	}
	r.entries = live
	return expired
}

// Count returns the number of live subscriptions.
func (r *monitorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
