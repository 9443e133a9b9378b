// Package adminapi exposes a small HTTP surface next to the UDP bank
// server: liveness, Prometheus metrics, counter snapshots, and a read-only
// account listing for lab inspection.
//
// The listener never mutates bank state. It reads accounts under the
// Bank's read lock and counters from atomics, so the datagram loop stays
// the single writer.
package adminapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/dittobank/internal/bank"
	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/internal/server"
)

// StatsProvider supplies point-in-time snapshots of the datagram server
// counters. *server.Server implements it.
type StatsProvider interface {
	Stats() server.StatsSnapshot
}

// AccountLister supplies read-only account snapshots. *bank.Bank
// implements it.
type AccountLister interface {
	Accounts() []bank.Account
}

// Config holds the admin listener settings.
type Config struct {
	// Bind is the TCP address to listen on. The surface is meant for
	// local inspection, so it defaults to loopback.
	Bind string

	// Port is the HTTP port. Port 0 binds an ephemeral port; the bound
	// address is available from Addr() once WaitReady() unblocks.
	Port int

	// ReadTimeout bounds how long reading a request may take.
	// Default: 5s
	ReadTimeout time.Duration

	// WriteTimeout bounds how long writing a response may take.
	// Default: 10s
	WriteTimeout time.Duration

	// IdleTimeout bounds how long keep-alive connections are held open.
	// Default: 60s
	IdleTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
}

// Server is the admin HTTP listener.
//
// The server is created stopped; Start binds the socket and blocks until
// the context is cancelled or the listener fails.
type Server struct {
	server        *http.Server
	config        Config
	addr          string
	listenerReady chan struct{}
	shutdownOnce  sync.Once
}

// New builds the admin listener around read-only views of the bank and
// the datagram server counters.
func New(cfg Config, stats StatsProvider, accounts AccountLister) *Server {
	cfg.applyDefaults()

	return &Server{
		server: &http.Server{
			Handler:      NewRouter(stats, accounts),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		config:        cfg,
		listenerReady: make(chan struct{}),
	}
}

// Start binds the TCP socket and serves until the context is cancelled,
// then shuts down gracefully. It returns nil on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port))
	if err != nil {
		return fmt.Errorf("admin listener bind: %w", err)
	}
	s.addr = ln.Addr().String()
	close(s.listenerReady)

	logger.Info("admin listener ready",
		logger.KeyComponent, "admin",
		logger.KeyAddr, s.addr,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// A fresh context bounds the drain; the cancelled one would abort
		// in-flight responses immediately.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("admin listener failed: %w", err)
	}
}

// Stop drains in-flight requests and closes the listener. It is safe to
// call more than once and concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin listener shutdown: %w", err)
			logger.Error("admin listener shutdown error", logger.Err(err))
		} else {
			logger.Info("admin listener stopped", logger.KeyComponent, "admin")
		}
	})
	return shutdownErr
}

// WaitReady returns a channel closed once the TCP socket is bound.
func (s *Server) WaitReady() <-chan struct{} {
	return s.listenerReady
}

// Addr returns the bound listen address. Valid after WaitReady() unblocks.
func (s *Server) Addr() string {
	return s.addr
}
