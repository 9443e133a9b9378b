package server

import (
	"bytes"
	"testing"
	"time"
)

// ============================================================================
// Reply Cache Tests
// ============================================================================

func TestReplyCachePutGet(t *testing.T) {
	c := newReplyCache(time.Minute)

	reply := []byte{0x42, 0x41, 0x4E, 0x4B, 1, 2}
	c.Put("127.0.0.1:5000#42", reply)

	got, ok := c.Get("127.0.0.1:5000#42")
	if !ok {
		t.Fatal("Get should find the cached reply")
	}
	if !bytes.Equal(got, reply) {
		t.Errorf("cached reply = %x, want %x", got, reply)
	}

	if _, ok := c.Get("127.0.0.1:5000#43"); ok {
		t.Error("Get should miss for a different request ID")
	}
	if _, ok := c.Get("127.0.0.1:5001#42"); ok {
		t.Error("Get should miss for a different endpoint")
	}
}

func TestReplyCacheStoresCopy(t *testing.T) {
	c := newReplyCache(time.Minute)

	reply := []byte{1, 2, 3, 4}
	c.Put("k", reply)

	// Mutating the caller's buffer must not corrupt the cached bytes.
	reply[0] = 0xFF

	got, _ := c.Get("k")
	if got[0] != 1 {
		t.Errorf("cached byte = %d, want 1 (cache must copy)", got[0])
	}
}

func TestReplyCacheSweep(t *testing.T) {
	c := newReplyCache(time.Minute)

	c.Put("a#1", []byte{1})
	c.Put("b#2", []byte{2})

	if removed := c.Sweep(time.Now()); removed != 0 {
		t.Errorf("Sweep before TTL removed %d entries, want 0", removed)
	}
	if c.Count() != 2 {
		t.Errorf("Count = %d, want 2", c.Count())
	}

	if removed := c.Sweep(time.Now().Add(2 * time.Minute)); removed != 2 {
		t.Errorf("Sweep after TTL removed %d entries, want 2", removed)
	}
	if c.Count() != 0 {
		t.Errorf("Count after sweep = %d, want 0", c.Count())
	}
	if _, ok := c.Get("a#1"); ok {
		t.Error("Get should miss after sweep")
	}
}

func TestReplyCacheOverwriteSameKey(t *testing.T) {
	c := newReplyCache(time.Minute)

	c.Put("k", []byte{1})
	c.Put("k", []byte{2})

	got, _ := c.Get("k")
	if got[0] != 2 {
		t.Errorf("cached byte = %d, want 2 (latest write wins)", got[0])
	}
	if c.Count() != 1 {
		t.Errorf("Count = %d, want 1", c.Count())
	}
}
