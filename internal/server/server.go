// Package server implements the DittoBank datagram server: a single UDP
// socket serving DBP requests with configurable invocation semantics.
//
// One goroutine owns the socket and processes datagrams in arrival order.
// Each iteration sweeps expired dedup and monitor entries, receives one
// datagram, runs it through the simulated-loss gate, answers it (from the
// reply cache for at-most-once retransmits, from the bank otherwise), and
// fans out callbacks to registered monitors for successful mutating
// operations. Serialization through the single loop is what makes the
// dedup lookup atomic with reply emission.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/dittobank/internal/bank"
	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
	"github.com/marmos91/dittobank/pkg/metrics"
)

// Config holds the datagram listener configuration.
type Config struct {
	// Bind is the address to listen on (default 0.0.0.0).
	Bind string

	// Port is the UDP port to listen on (default 9000). Port 0 binds an
	// ephemeral port; tests use this with UDPAddr.
	Port int

	// LossReq is the probability in [0,1) of discarding an inbound
	// request before it is decoded.
	LossReq float64

	// LossRep is the probability in [0,1) of discarding an outbound
	// reply after the operation executed.
	LossRep float64

	// LossSeed seeds the loss RNG for reproducible runs; 0 seeds from
	// the wall clock.
	LossSeed int64

	// DedupTTL is how long cached replies are replayed for at-most-once
	// retransmits (default 60s).
	DedupTTL time.Duration

	// ReadBuffer is the receive buffer size in bytes (default 65535).
	ReadBuffer int
}

// Server is the DittoBank UDP server.
type Server struct {
	config        Config
	bank          *bank.Bank
	conn          *net.UDPConn
	dedup         *replyCache
	monitors      *monitorRegistry
	loss          *lossSimulator
	counters      counters
	metrics       metrics.ServerMetrics
	shutdown      chan struct{}
	shutdownOnce  sync.Once
	wg            sync.WaitGroup
	listenerReady chan struct{}
}

// New creates a server for the given bank. A nil ServerMetrics falls back
// to the no-op implementation.
func New(cfg Config, b *bank.Bank, m metrics.ServerMetrics) *Server {
	if cfg.Bind == "" {
		cfg.Bind = "0.0.0.0"
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 60 * time.Second
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = 65535
	}
	if m == nil {
		m = metrics.Nop()
	}

	return &Server{
		config:        cfg,
		bank:          b,
		dedup:         newReplyCache(cfg.DedupTTL),
		monitors:      newMonitorRegistry(),
		loss:          newLossSimulator(cfg.LossReq, cfg.LossRep, cfg.LossSeed),
		metrics:       m,
		shutdown:      make(chan struct{}),
		listenerReady: make(chan struct{}),
	}
}

// Serve binds the UDP socket and runs the datagram loop. It blocks until
// the context is cancelled or Stop is called. After the socket is bound,
// WaitReady() unblocks.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve UDP %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen UDP %s: %w", addr, err)
	}
	s.conn = conn

	// Signal that the listener is ready
	close(s.listenerReady)

	logger.Info("server listening",
		logger.KeyAddr, conn.LocalAddr().String(),
		logger.KeyLossReq, s.config.LossReq,
		logger.KeyLossRep, s.config.LossRep,
		"dedup_ttl", s.config.DedupTTL.String())

	s.wg.Add(1)
	go s.serveLoop()

	// Monitor context cancellation
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	s.wg.Wait()
	return nil
}

// WaitReady returns a channel that is closed once the UDP socket is bound
// and the server is accepting datagrams. Callers should select on it with
// a timeout to detect startup failures.
func (s *Server) WaitReady() <-chan struct{} {
	return s.listenerReady
}

// serveLoop receives and processes datagrams until shutdown.
func (s *Server) serveLoop() {
	defer s.wg.Done()

	buf := make([]byte, s.config.ReadBuffer)

	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		s.sweepExpired(time.Now())

		// Set a short deadline so we can check for shutdown periodically
		if err := s.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("set read deadline", logger.Err(err))
				continue
			}
		}

		n, clientAddr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue // Normal timeout, check shutdown and retry
			}
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("udp read error", logger.Err(err))
				continue
			}
		}

		// Copy the data since buf is reused across iterations and the
		// decoded message aliases it.
		data := make([]byte, n)
		copy(data, buf[:n])

		s.processDatagram(data, clientAddr)
	}
}

// processDatagram runs one datagram through the loss gate, the dedup cache,
// and the operation dispatch, then sends the reply and any callbacks.
func (s *Server) processDatagram(data []byte, client *net.UDPAddr) {
	clientKey := client.String()

	// Simulated inbound loss: the datagram arrived, the server pretends
	// it did not.
	if s.loss.DropRequest() {
		s.counters.requestsDropped.Add(1)
		s.metrics.RecordDrop(metrics.DropKindRequest)
		logger.Info("drop request (simulated)", logger.Client(clientKey))
		return
	}

	req, err := dbp.Decode(data)
	if err != nil {
		s.counters.badDatagrams.Add(1)
		logger.Debug("bad datagram dropped", logger.Client(clientKey), logger.KeyReason, err.Error())
		return
	}
	if req.Version != dbp.Version || req.Type != dbp.MsgRequest {
		s.counters.badDatagrams.Add(1)
		logger.Debug("bad datagram dropped",
			logger.Client(clientKey),
			logger.KeyReason, fmt.Sprintf("version=%d type=%s", req.Version, req.Type))
		return
	}

	atMostOnce := req.AtMostOnce()
	dedupKey := clientKey + "#" + strconv.FormatUint(req.RequestID, 10)

	// At-most-once retransmits replay the cached bytes; the operation is
	// not re-executed. The replay is subject to reply loss like any send.
	if atMostOnce {
		if cached, ok := s.dedup.Get(dedupKey); ok {
			s.counters.dedupHits.Add(1)
			s.metrics.RecordDedupHit()
			logger.Info("duplicate request, replaying cached reply",
				logger.Client(clientKey), logger.ReqID(req.RequestID))

			if s.loss.DropReply() {
				s.counters.repliesDropped.Add(1)
				s.metrics.RecordDrop(metrics.DropKindReply)
				logger.Info("drop reply (simulated)", logger.Client(clientKey), logger.Op(req.Op.String()))
				return
			}
			s.sendReply(cached, client)
			return
		}
	}

	semantics := "at-least-once"
	if atMostOnce {
		semantics = "at-most-once"
	}
	logger.Info("request received",
		logger.Op(req.Op.String()),
		logger.ReqID(req.RequestID),
		logger.Client(clientKey),
		logger.KeySemantics, semantics)

	s.counters.requestsReceived.Add(1)

	start := time.Now()
	status, replyBody, events := s.dispatch(req, client)
	s.metrics.RecordRequest(req.Op.String(), status.String(), time.Since(start))

	replyBytes, err := dbp.NewReply(req, status, replyBody).Encode()
	if err != nil {
		logger.Error("encode reply", logger.Op(req.Op.String()), logger.Err(err))
		return
	}

	// Cache before the loss draw: even when this reply is dropped, the
	// retransmit must replay these bytes rather than execute again.
	if atMostOnce {
		s.dedup.Put(dedupKey, replyBytes)
	}

	if s.loss.DropReply() {
		s.counters.repliesDropped.Add(1)
		s.metrics.RecordDrop(metrics.DropKindReply)
		logger.Info("drop reply (simulated)", logger.Client(clientKey), logger.Op(req.Op.String()))
	} else {
		s.sendReply(replyBytes, client)
	}

	// Callbacks fan out even when the reply was dropped: the operation
	// itself succeeded.
	s.fanOutCallbacks(events)
}

// sendReply writes one reply datagram back to the client.
func (s *Server) sendReply(data []byte, client *net.UDPAddr) {
	if _, err := s.conn.WriteToUDP(data, client); err != nil {
		logger.Debug("write reply", logger.Client(client.String()), logger.Err(err))
		return
	}
	s.counters.repliesSent.Add(1)
}

// fanOutCallbacks sends one callback datagram per event to every live
// monitor, in registration order. Callbacks are best-effort: not cached,
// not retried, not subject to the loss simulation.
func (s *Server) fanOutCallbacks(events []callbackEvent) {
	if len(events) == 0 {
		return
	}
	entries := s.monitors.Snapshot()
	if len(entries) == 0 {
		return
	}

	for _, ev := range events {
		body, err := (&dbp.CallbackUpdate{
			UpdateType: ev.Update,
			AccountNo:  ev.AccountNo,
			Currency:   ev.Currency,
			NewBalance: ev.NewBalance,
			Info:       ev.Info,
		}).Encode()
		if err != nil {
			logger.Error("encode callback body", logger.Err(err))
			continue
		}
		data, err := dbp.NewCallback(body).Encode()
		if err != nil {
			logger.Error("encode callback", logger.Err(err))
			continue
		}

		for _, m := range entries {
			if _, err := s.conn.WriteToUDP(data, m.Addr); err != nil {
				logger.Debug("write callback",
					logger.Client(m.Addr.String()),
					logger.KeyMonitorID, m.ID,
					logger.Err(err))
				continue
			}
			s.counters.callbacksSent.Add(1)
			s.metrics.RecordCallback()
			logger.Info("callback sent",
				logger.Client(m.Addr.String()),
				logger.Account(ev.AccountNo),
				logger.Op(ev.Update.String()))
		}
	}
}

// sweepExpired prunes dedup entries and monitor subscriptions whose TTL
// elapsed. Called once per loop iteration.
func (s *Server) sweepExpired(now time.Time) {
	if n := s.dedup.Sweep(now); n > 0 {
		logger.Debug("dedup entries expired",
			logger.KeyExpired, n,
			logger.KeyDedupSize, s.dedup.Count())
	}

	expired := s.monitors.Sweep(now)
	if len(expired) == 0 {
		return
	}
	remaining := s.monitors.Count()
	s.metrics.SetActiveMonitors(remaining)
	for _, entry := range expired {
		logger.Info("monitor expired",
			logger.KeyMonitorID, entry.ID,
			logger.Client(entry.Addr.String()),
			logger.KeyMonitors, remaining)
	}
}

// Stop shuts the server down and waits for the datagram loop to exit.
// Safe to call more than once.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
	s.wg.Wait()
}

// UDPAddr returns the bound socket address (for tests and logs).
// Returns empty string if the server is not listening.
func (s *Server) UDPAddr() string {
	if s.conn != nil {
		return s.conn.LocalAddr().String()
	}
	return ""
}

// Stats returns a point-in-time snapshot of the server counters.
func (s *Server) Stats() StatsSnapshot {
	return StatsSnapshot{
		RequestsReceived: s.counters.requestsReceived.Load(),
		RepliesSent:      s.counters.repliesSent.Load(),
		RequestsDropped:  s.counters.requestsDropped.Load(),
		RepliesDropped:   s.counters.repliesDropped.Load(),
		DedupHits:        s.counters.dedupHits.Load(),
		CallbacksSent:    s.counters.callbacksSent.Load(),
		BadDatagrams:     s.counters.badDatagrams.Load(),
		ActiveMonitors:   s.monitors.Count(),
		Accounts:         s.bank.Count(),
	}
}
