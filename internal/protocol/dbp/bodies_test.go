package dbp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRequestWireOrder(t *testing.T) {
	req := &OpenRequest{Name: "alice", Password: "secret", Currency: CurrencySGD, Initial: 100.0}
	body, err := req.Encode()
	require.NoError(t, err)

	// name(2+5) + password(16) + currency(2) + initial(8)
	require.Len(t, body, 33)
	assert.Equal(t, []byte{0x00, 0x05, 'a', 'l', 'i', 'c', 'e'}, body[0:7], "length-prefixed name")
	assert.Equal(t, byte('s'), body[7], "password field follows name")
	assert.Equal(t, []byte{0x00, 0x01}, body[23:25], "currency after password field")

	got, err := DecodeOpenRequest(body)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestCloseAndQueryRequestRoundTrip(t *testing.T) {
	cl := &CloseRequest{Name: "bob", AccountNo: 10002, Password: "hunter2"}
	body, err := cl.Encode()
	require.NoError(t, err)
	gotClose, err := DecodeCloseRequest(body)
	require.NoError(t, err)
	assert.Equal(t, cl, gotClose)

	q := &QueryRequest{Name: "bob", AccountNo: 10002, Password: "hunter2"}
	qBody, err := q.Encode()
	require.NoError(t, err)
	gotQuery, err := DecodeQueryRequest(qBody)
	require.NoError(t, err)
	assert.Equal(t, q, gotQuery)

	// CLOSE and QUERY_BALANCE share a wire layout by design.
	assert.Equal(t, body, qBody)
}

func TestTransferRequestRoundTrip(t *testing.T) {
	req := &TransferRequest{
		Name:        "alice",
		FromAccount: 10001,
		Password:    "secret",
		ToAccount:   10002,
		Currency:    CurrencyCNY,
		Amount:      25.0,
	}
	body, err := req.Encode()
	require.NoError(t, err)

	got, err := DecodeTransferRequest(body)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestAmountRequestTruncated(t *testing.T) {
	req := &AmountRequest{Name: "alice", AccountNo: 10001, Password: "secret", Currency: CurrencyCNY, Amount: 10}
	body, err := req.Encode()
	require.NoError(t, err)

	for _, cut := range []int{1, 8, len(body) - 1} {
		_, err := DecodeAmountRequest(body[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestBodyRejectsTrailingBytes(t *testing.T) {
	req := &MonitorRequest{Seconds: 30}
	body := req.Encode()

	_, err := DecodeMonitorRequest(append(body, 0x00))
	assert.Error(t, err)
}

func TestReplyBodies(t *testing.T) {
	t.Run("Open", func(t *testing.T) {
		rep := &OpenReply{AccountNo: 10001, Balance: 100}
		got, err := DecodeOpenReply(rep.Encode())
		require.NoError(t, err)
		assert.Equal(t, rep, got)
	})

	t.Run("Query", func(t *testing.T) {
		rep := &QueryReply{Currency: CurrencySGD, Balance: 12.5}
		got, err := DecodeQueryReply(rep.Encode())
		require.NoError(t, err)
		assert.Equal(t, rep, got)
	})

	t.Run("Transfer", func(t *testing.T) {
		rep := &TransferReply{FromBalance: 75, ToBalance: 125}
		got, err := DecodeTransferReply(rep.Encode())
		require.NoError(t, err)
		assert.Equal(t, rep, got)
	})

	t.Run("Monitor", func(t *testing.T) {
		body, err := (&MonitorReply{Info: "monitor registered for 30s"}).Encode()
		require.NoError(t, err)
		got, err := DecodeMonitorReply(body)
		require.NoError(t, err)
		assert.Equal(t, "monitor registered for 30s", got.Info)
	})
}

func TestCallbackUpdateRoundTrip(t *testing.T) {
	cb := &CallbackUpdate{
		UpdateType: OpTransfer,
		AccountNo:  10001,
		Currency:   CurrencyCNY,
		NewBalance: 75.0,
		Info:       "TRANSFER out 25.00 to 10002 by alice",
	}
	body, err := cb.Encode()
	require.NoError(t, err)

	got, err := DecodeCallbackUpdate(body)
	require.NoError(t, err)
	assert.Equal(t, cb, got)
}
