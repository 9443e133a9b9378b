package server

import (
	"math/rand"
	"time"
)

// lossSimulator simulates datagram loss with one uniform draw per decision:
// inbound requests and outbound replies are dropped independently with their
// configured probabilities. Callbacks are never subjected to loss.
//
// A fixed seed makes a run reproducible, which is what the loss-semantics
// experiments need; seed 0 seeds from the wall clock.
//
// Only the serve loop draws, so no locking is needed.
type lossSimulator struct {
	rng     *rand.Rand
	reqProb float64
	repProb float64
}

// newLossSimulator creates a simulator with the given drop probabilities,
// both in [0,1).
func newLossSimulator(reqProb, repProb float64, seed int64) *lossSimulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lossSimulator{
		rng:     rand.New(rand.NewSource(seed)),
		reqProb: reqProb,
		repProb: repProb,
	}
}

// DropRequest draws once and reports whether to discard the inbound datagram.
func (l *lossSimulator) DropRequest() bool {
	return l.rng.Float64() < l.reqProb
}

// DropReply draws once and reports whether to discard the outbound reply.
func (l *lossSimulator) DropReply() bool {
	return l.rng.Float64() < l.repProb
}
