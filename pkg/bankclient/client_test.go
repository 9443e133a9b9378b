package bankclient

import (
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittobank/internal/protocol/dbp"
)

// ============================================================================
// Test Helpers
// ============================================================================

// fakeServer is a scripted UDP endpoint standing in for the real server.
// Every decoded request is passed to handle; the returned messages are
// encoded and sent back in order.
type fakeServer struct {
	conn     *net.UDPConn
	requests atomic.Int64
}

func startFakeServer(t *testing.T, handle func(req *dbp.Message) []*dbp.Message) *fakeServer {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	fs := &fakeServer{conn: conn}
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 65535)
		for {
			n, raddr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := dbp.Decode(buf[:n])
			if err != nil {
				continue
			}
			fs.requests.Add(1)
			for _, msg := range handle(req) {
				data, err := msg.Encode()
				if err != nil {
					continue
				}
				_, _ = conn.WriteToUDP(data, raddr)
			}
		}
	}()

	t.Cleanup(func() {
		_ = conn.Close()
		<-done
	})
	return fs
}

// send writes a raw datagram from the fake server's socket, so it passes
// the client's connected-socket source filter.
func (fs *fakeServer) send(t *testing.T, to *net.UDPAddr, data []byte) {
	t.Helper()
	_, err := fs.conn.WriteToUDP(data, to)
	require.NoError(t, err)
}

func newTestClient(t *testing.T, fs *fakeServer, cfg Config) *Client {
	t.Helper()

	host, portStr, err := net.SplitHostPort(fs.conn.LocalAddr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg.Server = host
	cfg.Port = port
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func encodeCallback(t *testing.T, update dbp.OpCode, accountNo int32, newBalance float64, info string) []byte {
	t.Helper()

	body, err := (&dbp.CallbackUpdate{
		UpdateType: update,
		AccountNo:  accountNo,
		Currency:   dbp.CurrencyCNY,
		NewBalance: newBalance,
		Info:       info,
	}).Encode()
	require.NoError(t, err)
	data, err := dbp.NewCallback(body).Encode()
	require.NoError(t, err)
	return data
}

// ============================================================================
// Call Tests
// ============================================================================

func TestCallReturnsMatchingReply(t *testing.T) {
	var seenFlags atomic.Uint32

	fs := startFakeServer(t, func(req *dbp.Message) []*dbp.Message {
		seenFlags.Store(uint32(req.Flags))
		return []*dbp.Message{dbp.NewReply(req, dbp.StatusOK, nil)}
	})

	t.Run("AtLeastOnce", func(t *testing.T) {
		c := newTestClient(t, fs, Config{Timeout: 500 * time.Millisecond, Retry: 3})

		reply, err := c.Call(dbp.OpQueryBalance, nil)
		require.NoError(t, err)
		assert.Equal(t, dbp.StatusOK, reply.Status)
		assert.Equal(t, dbp.OpQueryBalance, reply.Op)
		assert.EqualValues(t, 0, seenFlags.Load(), "at-least-once requests carry no flags")
	})

	t.Run("AtMostOnce", func(t *testing.T) {
		c := newTestClient(t, fs, Config{AtMostOnce: true, Timeout: 500 * time.Millisecond, Retry: 3})

		_, err := c.Call(dbp.OpQueryBalance, nil)
		require.NoError(t, err)
		assert.EqualValues(t, dbp.FlagAtMostOnce, seenFlags.Load())
	})
}

func TestCallFiltersUnmatchedDatagrams(t *testing.T) {
	callbackBody, err := (&dbp.CallbackUpdate{
		UpdateType: dbp.OpDeposit,
		AccountNo:  10001,
		Currency:   dbp.CurrencyCNY,
		NewBalance: 110,
		Info:       "DEPOSIT 10 by alice",
	}).Encode()
	require.NoError(t, err)

	// Each request is answered with a callback, a reply for some other
	// requestID, and finally the real reply. The first two burn attempts.
	fs := startFakeServer(t, func(req *dbp.Message) []*dbp.Message {
		stale := dbp.NewReply(req, dbp.StatusOK, nil)
		stale.RequestID = req.RequestID + 1
		return []*dbp.Message{
			dbp.NewCallback(callbackBody),
			stale,
			dbp.NewReply(req, dbp.StatusOK, nil),
		}
	})

	c := newTestClient(t, fs, Config{Timeout: 500 * time.Millisecond, Retry: 5})

	reply, err := c.Call(dbp.OpDeposit, nil)
	require.NoError(t, err)
	assert.Equal(t, dbp.StatusOK, reply.Status)

	// Attempt 1 consumed the callback, attempt 2 the stale reply, and
	// attempt 3 matched; each burned attempt re-sent the request. Call
	// returns as soon as it reads the matching reply, which can be before
	// the fake server's goroutine has read the retransmits off its socket,
	// so wait for the counter to settle before asserting on it.
	require.Eventually(t, func() bool { return fs.requests.Load() >= 3 },
		time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 3, fs.requests.Load())
}

func TestCallRetryExhaustionReturnsErrTimeout(t *testing.T) {
	fs := startFakeServer(t, func(*dbp.Message) []*dbp.Message { return nil })

	c := newTestClient(t, fs, Config{Timeout: 50 * time.Millisecond, Retry: 3})

	_, err := c.Call(dbp.OpQueryBalance, nil)
	require.ErrorIs(t, err, ErrTimeout)
	assert.EqualValues(t, 3, fs.requests.Load(), "every attempt re-sends the request")
}

func TestCallReturnsNonOKStatusWithoutRetry(t *testing.T) {
	fs := startFakeServer(t, func(req *dbp.Message) []*dbp.Message {
		return []*dbp.Message{dbp.NewReply(req, dbp.StatusAuth, nil)}
	})

	c := newTestClient(t, fs, Config{Timeout: 500 * time.Millisecond, Retry: 5})

	reply, err := c.Call(dbp.OpWithdraw, nil)
	require.NoError(t, err, "a non-OK status is an answer, not a transport failure")
	assert.Equal(t, dbp.StatusAuth, reply.Status)
	assert.EqualValues(t, 1, fs.requests.Load(), "definitive answers are not retried")
}

// ============================================================================
// Typed Operation Tests
// ============================================================================

func TestOpenDecodesReply(t *testing.T) {
	fs := startFakeServer(t, func(req *dbp.Message) []*dbp.Message {
		body := (&dbp.OpenReply{AccountNo: 10001, Balance: 42.5}).Encode()
		return []*dbp.Message{dbp.NewReply(req, dbp.StatusOK, body)}
	})

	c := newTestClient(t, fs, Config{Timeout: 500 * time.Millisecond, Retry: 3})

	opened, err := c.Open("alice", "secret", dbp.CurrencyCNY, 42.5)
	require.NoError(t, err)
	assert.Equal(t, int32(10001), opened.AccountNo)
	assert.Equal(t, 42.5, opened.Balance)
}

func TestTypedOperationSurfacesStatusError(t *testing.T) {
	fs := startFakeServer(t, func(req *dbp.Message) []*dbp.Message {
		return []*dbp.Message{dbp.NewReply(req, dbp.StatusNotFound, nil)}
	})

	c := newTestClient(t, fs, Config{Timeout: 500 * time.Millisecond, Retry: 3})

	_, err := c.Balance("alice", 99999, "secret")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, dbp.StatusNotFound, statusErr.Status)
	assert.Equal(t, dbp.OpQueryBalance, statusErr.Op)
	assert.True(t, statusErr.IsNotFound())
}

// ============================================================================
// Listen Tests
// ============================================================================

func TestListenSurfacesCallbacksAndDropsNoise(t *testing.T) {
	fs := startFakeServer(t, func(*dbp.Message) []*dbp.Message { return nil })
	c := newTestClient(t, fs, Config{Timeout: 100 * time.Millisecond})

	clientAddr, ok := c.conn.LocalAddr().(*net.UDPAddr)
	require.True(t, ok)

	first := encodeCallback(t, dbp.OpDeposit, 10001, 110, "DEPOSIT 10 by alice")
	second := encodeCallback(t, dbp.OpTransfer, 10002, 125, "TRANSFER in 25 from 10001")
	stale, err := dbp.NewReply(dbp.NewRequest(dbp.OpOpen, 0, 99, nil), dbp.StatusOK, nil).Encode()
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		fs.send(t, clientAddr, first)
		fs.send(t, clientAddr, []byte{1, 2, 3}) // garbage
		fs.send(t, clientAddr, stale)           // reply, not a callback
		fs.send(t, clientAddr, second)
	}()

	var got []*dbp.CallbackUpdate
	err = c.Listen(context.Background(), 1200*time.Millisecond, func(u *dbp.CallbackUpdate) {
		got = append(got, u)
	})
	require.NoError(t, err)

	require.Len(t, got, 2, "only CALLBACK_UPDATE datagrams are surfaced")
	assert.Equal(t, dbp.OpDeposit, got[0].UpdateType)
	assert.Equal(t, "DEPOSIT 10 by alice", got[0].Info)
	assert.Equal(t, int32(10002), got[1].AccountNo)
	assert.Equal(t, 125.0, got[1].NewBalance)
}

func TestListenStopsOnContextCancel(t *testing.T) {
	fs := startFakeServer(t, func(*dbp.Message) []*dbp.Message { return nil })
	c := newTestClient(t, fs, Config{Timeout: 100 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := c.Listen(ctx, 10*time.Second, func(*dbp.CallbackUpdate) {})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 3*time.Second, "cancellation must not wait out the window")
}

// ============================================================================
// Request ID Tests
// ============================================================================

func TestNewRequestIDClearsSignBit(t *testing.T) {
	for i := 0; i < 256; i++ {
		id, err := newRequestID()
		require.NoError(t, err)
		assert.Zero(t, id&(1<<63), "request IDs are non-negative 63-bit values")
	}
}
