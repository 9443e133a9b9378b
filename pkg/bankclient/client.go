// Package bankclient provides the DBP client: the retrying UDP invoker and
// the monitor callback receiver used by dittobankctl.
//
// One Client owns one UDP socket. Replies are paired with requests by
// requestID: UDP gives no ordering, at-least-once retransmits may produce
// duplicate replies, and monitor callbacks arrive unsolicited on the same
// socket, so the next datagram is never assumed to be the answer.
package bankclient

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// readBufferSize is the receive buffer for replies and callbacks; one DBP
// datagram never exceeds a single UDP payload.
const readBufferSize = 65535

// Config holds the client connection settings.
type Config struct {
	// Server is the server host or IP (default 127.0.0.1).
	Server string

	// Port is the server UDP port (default 9000).
	Port int

	// AtMostOnce selects at-most-once invocation semantics: requests carry
	// the AT_MOST_ONCE flag and the server replays cached replies for
	// retransmits instead of re-executing.
	AtMostOnce bool

	// Timeout is the per-attempt receive timeout (default 500ms).
	Timeout time.Duration

	// Retry is the attempt budget per call (default 5).
	Retry int
}

// Client is a DBP client bound to one UDP socket.
type Client struct {
	config    Config
	conn      *net.UDPConn
	sessionID string
}

// New dials the configured server and returns a ready client.
func New(cfg Config) (*Client, error) {
	if cfg.Server == "" {
		cfg.Server = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 500 * time.Millisecond
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 5
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve server %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial server %s: %w", addr, err)
	}

	c := &Client{
		config:    cfg,
		conn:      conn,
		sessionID: uuid.NewString(),
	}

	semantics := "at-least-once"
	if cfg.AtMostOnce {
		semantics = "at-most-once"
	}
	logger.Debug("client session started",
		logger.KeySessionID, c.sessionID,
		logger.KeyAddr, addr,
		logger.KeySemantics, semantics,
		logger.KeyTimeout, cfg.Timeout.String(),
		logger.KeyRetries, cfg.Retry)

	return c, nil
}

// SessionID returns the identifier tagging this client's log lines.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Close releases the UDP socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends one request and waits for its reply, retrying up to the
// configured budget. Each attempt sends the same encoded bytes (same
// requestID, so at-most-once servers can dedup) and waits one timeout for
// a matching reply. Datagrams that fail to decode, are not replies, or
// carry a different requestID burn the attempt and trigger a resend.
//
// A non-OK reply is a definitive answer and is returned, not retried.
// Exhausting the budget returns ErrTimeout.
func (c *Client) Call(op dbp.OpCode, body []byte) (*dbp.Message, error) {
	requestID, err := newRequestID()
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}

	var flags uint16
	if c.config.AtMostOnce {
		flags = dbp.FlagAtMostOnce
	}

	data, err := dbp.NewRequest(op, flags, requestID, body).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}

	buf := make([]byte, readBufferSize)
	for attempt := 1; attempt <= c.config.Retry; attempt++ {
		if attempt > 1 {
			logger.Debug("retrying request",
				logger.KeySessionID, c.sessionID,
				logger.Op(op.String()),
				logger.ReqID(requestID),
				logger.KeyAttempt, attempt,
				logger.KeyRetries, c.config.Retry)
		}

		if _, err := c.conn.Write(data); err != nil {
			return nil, fmt.Errorf("send %s request: %w", op, err)
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(c.config.Timeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return nil, fmt.Errorf("receive %s reply: %w", op, err)
		}

		reply, err := dbp.Decode(buf[:n])
		if err != nil {
			logger.Debug("discarding undecodable datagram",
				logger.KeySessionID, c.sessionID, logger.KeyReason, err.Error())
			continue
		}
		if reply.Type != dbp.MsgReply || reply.RequestID != requestID {
			// Late replies to earlier calls and monitor callbacks share
			// this socket; requestID is the pairing key.
			logger.Debug("discarding unmatched datagram",
				logger.KeySessionID, c.sessionID,
				logger.KeyMsgType, reply.Type.String(),
				logger.ReqID(reply.RequestID))
			continue
		}

		return reply, nil
	}

	logger.Warn("request failed after retries",
		logger.KeySessionID, c.sessionID,
		logger.Op(op.String()),
		logger.ReqID(requestID),
		logger.KeyRetries, c.config.Retry)
	return nil, fmt.Errorf("%s after %d attempts: %w", op, c.config.Retry, ErrTimeout)
}

// newRequestID draws a fresh 63-bit nonce from crypto/rand. The ID is
// per-call: a collision inside the server's dedup window would silently
// replay the wrong reply, so the space is kept as large as the wire allows.
func newRequestID() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]) &^ (1 << 63), nil
}
