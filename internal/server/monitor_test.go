package server

import (
	"net"
	"testing"
	"time"
)

// ============================================================================
// Monitor Registry Tests
// ============================================================================

func testUDPAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func TestMonitorRegisterKeepsRegistrationOrder(t *testing.T) {
	r := newMonitorRegistry()

	first := r.Register(testUDPAddr(5001), time.Minute)
	second := r.Register(testUDPAddr(5002), time.Minute)

	if first.ID == "" || second.ID == "" {
		t.Fatal("Register should assign subscription IDs")
	}
	if first.ID == second.ID {
		t.Error("subscription IDs should be unique")
	}

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}
	if snap[0].Addr.Port != 5001 || snap[1].Addr.Port != 5002 {
		t.Errorf("Snapshot order = [%d, %d], want [5001, 5002]",
			snap[0].Addr.Port, snap[1].Addr.Port)
	}
}

func TestMonitorSameEndpointRegistersIndependently(t *testing.T) {
	r := newMonitorRegistry()

	addr := testUDPAddr(5001)
	r.Register(addr, time.Minute)
	r.Register(addr, time.Minute)

	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2 (same endpoint registers twice)", r.Count())
	}
}

func TestMonitorSweepExpiry(t *testing.T) {
	r := newMonitorRegistry()

	entry := r.Register(testUDPAddr(5001), time.Minute)

	if expired := r.Sweep(time.Now()); len(expired) != 0 {
		t.Errorf("Sweep before expiry removed %d entries, want 0", len(expired))
	}

	expired := r.Sweep(time.Now().Add(2 * time.Minute))
	if len(expired) != 1 {
		t.Fatalf("Sweep after expiry removed %d entries, want 1", len(expired))
	}
	if expired[0].ID != entry.ID {
		t.Errorf("expired ID = %s, want %s", expired[0].ID, entry.ID)
	}
	if r.Count() != 0 {
		t.Errorf("Count after sweep = %d, want 0", r.Count())
	}
}

func TestMonitorSweepKeepsLiveEntries(t *testing.T) {
	r := newMonitorRegistry()

	r.Register(testUDPAddr(5001), time.Minute)
	kept := r.Register(testUDPAddr(5002), time.Hour)

	expired := r.Sweep(time.Now().Add(30 * time.Minute))
	if len(expired) != 1 {
		t.Fatalf("Sweep removed %d entries, want 1", len(expired))
	}

	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].ID != kept.ID {
		t.Errorf("surviving subscription should be the long-lived one")
	}
}
