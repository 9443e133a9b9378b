package server

import (
	"sync"
	"time"
)

// dedupEntry holds one cached reply: the exact encoded datagram produced the
// first time the request executed, and the moment the entry leaves the cache.
type dedupEntry struct {
	replyBytes []byte
	expiresAt  time.Time
}

// replyCache stores encoded replies keyed by "clientKey#requestID" so that
// at-most-once retransmits replay the original bytes instead of re-executing
// the operation. Replay must be bit-identical: a re-executed handler could
// observe state mutated by another client in between and answer differently.
//
// Eviction is lazy: the serve loop calls Sweep once per iteration. There is
// no size cap; registry growth is bounded by client traffic within the TTL.
type replyCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]dedupEntry
}

// newReplyCache creates an empty cache whose entries live for ttl.
func newReplyCache(ttl time.Duration) *replyCache {
	return &replyCache{
		ttl:     ttl,
		entries: make(map[string]dedupEntry),
	}
}

// Get returns the cached reply bytes for key. Expiry is the sweep's job:
// an entry still present is replayed even if its deadline passed while the
// loop was blocked receiving.
func (c *replyCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.replyBytes, true
}

// Put stores a copy of replyBytes under key. The copy guards against the
// caller reusing its buffer; the cached bytes are what future retransmits
// receive verbatim.
func (c *replyCache) Put(key string, replyBytes []byte) {
	stored := make([]byte, len(replyBytes))
	copy(stored, replyBytes)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = dedupEntry{
		replyBytes: stored,
		expiresAt:  time.Now().Add(c.ttl),
	}
}

// Sweep removes entries whose deadline is at or before now and returns the
// number removed.
func (c *replyCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !entry.expiresAt.After(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of cached replies.
func (c *replyCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
