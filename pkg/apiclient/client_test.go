package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittobank/internal/adminapi"
	"github.com/marmos91/dittobank/internal/bank"
	"github.com/marmos91/dittobank/internal/protocol/dbp"
	"github.com/marmos91/dittobank/internal/server"
)

func TestNew(t *testing.T) {
	client := New("http://localhost:9100")
	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:9100", client.baseURL)
}

func TestGetUnwrapsEnvelope(t *testing.T) {
	type payload struct {
		Message string `json:"message"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data":      payload{Message: "hello"},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)

	var got payload
	err := client.get("/test", &got)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Message)
}

func TestGetReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "error",
			"error":  "metrics collection disabled",
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.get("/test", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "metrics collection disabled", apiErr.Message)
	assert.True(t, apiErr.IsNotFound())
}

func TestGetWrapsNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.get("/test", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "gateway exploded")
}

// canned counter source for serving the real admin router in tests.
type fakeStats struct {
	snapshot server.StatsSnapshot
}

func (f *fakeStats) Stats() server.StatsSnapshot {
	return f.snapshot
}

func TestClientAgainstAdminRouter(t *testing.T) {
	vault := bank.New()
	accountNo, _, err := vault.Open("alice", "secret", dbp.CurrencySGD, 100)
	require.NoError(t, err)

	stats := &fakeStats{snapshot: server.StatsSnapshot{
		RequestsReceived: 12,
		RepliesSent:      11,
		DedupHits:        2,
		Accounts:         1,
	}}

	srv := httptest.NewServer(adminapi.NewRouter(stats, vault))
	defer srv.Close()

	client := New(srv.URL)

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "dittobank", health.Service)
	assert.GreaterOrEqual(t, health.UptimeSec, int64(0))
	_, err = time.Parse(time.RFC3339, health.StartedAt)
	assert.NoError(t, err)

	snap, err := client.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), snap.RequestsReceived)
	assert.Equal(t, uint64(2), snap.DedupHits)
	assert.Equal(t, 1, snap.Accounts)

	accounts, err := client.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, accountNo, accounts[0].AccountNo)
	assert.Equal(t, "alice", accounts[0].Name)
	assert.Equal(t, "SGD", accounts[0].Currency)
	assert.InDelta(t, 100.0, accounts[0].Balance, 1e-9)
	assert.False(t, accounts[0].Closed)
}
