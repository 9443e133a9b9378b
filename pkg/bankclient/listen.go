package bankclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/marmos91/dittobank/internal/logger"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// listenPollInterval is how long each receive blocks before re-checking the
// context and the window deadline.
const listenPollInterval = time.Second

// Listen receives monitor callbacks on the client socket for the duration
// of the window, invoking fn for each decoded CALLBACK_UPDATE. Everything
// else that arrives during the window (late replies, garbage) is dropped.
//
// Listen returns when the window elapses, or early with ctx.Err() if the
// context is cancelled. The caller must not issue other requests on this
// client while listening.
func (c *Client) Listen(ctx context.Context, window time.Duration, fn func(*dbp.CallbackUpdate)) error {
	deadline := time.Now().Add(window)
	buf := make([]byte, readBufferSize)

	logger.Debug("listening for callbacks",
		logger.KeySessionID, c.sessionID,
		logger.KeyTimeout, window.String())

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}

		poll := time.Until(deadline)
		if poll > listenPollInterval {
			poll = listenPollInterval
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(poll)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		n, err := c.conn.Read(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("receive callback: %w", err)
		}

		msg, err := dbp.Decode(buf[:n])
		if err != nil {
			logger.Debug("discarding undecodable datagram",
				logger.KeySessionID, c.sessionID, logger.KeyReason, err.Error())
			continue
		}
		if msg.Type != dbp.MsgCallback || msg.Op != dbp.OpCallbackUpdate {
			continue
		}
		update, err := dbp.DecodeCallbackUpdate(msg.Body)
		if err != nil {
			logger.Debug("discarding malformed callback",
				logger.KeySessionID, c.sessionID, logger.KeyReason, err.Error())
			continue
		}

		fn(update)
	}

	return nil
}
