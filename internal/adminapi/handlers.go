package adminapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marmos91/dittobank/internal/logger"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func okResponse(data interface{}) Response {
	return Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func errorResponse(errMsg string) Response {
	return Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     errMsg,
	}
}

// writeJSON encodes to a buffer first so an encoding failure can still be
// reported before any headers have been sent.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode admin response", logger.Err(err))
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// healthHandler answers the liveness probe with service identity and
// uptime, measured from router construction (effectively process start,
// since the admin server is built during daemon startup).
type healthHandler struct {
	startTime time.Time
}

func newHealthHandler() *healthHandler {
	return &healthHandler{startTime: time.Now()}
}

func (h *healthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, okResponse(map[string]interface{}{
		"service":    "dittobank",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// statsHandler serves the datagram server counter snapshot.
type statsHandler struct {
	src StatsProvider
}

func (h *statsHandler) Snapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, okResponse(h.src.Stats()))
}

// accountView is the account listing wire shape. Credentials never leave
// the bank package, so there is nothing to redact here.
type accountView struct {
	AccountNo int32   `json:"account_no"`
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	Balance   float64 `json:"balance"`
	Closed    bool    `json:"closed"`
}

// accountsHandler serves the read-only account listing.
type accountsHandler struct {
	src AccountLister
}

func (h *accountsHandler) List(w http.ResponseWriter, _ *http.Request) {
	accounts := h.src.Accounts()

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{
			AccountNo: a.AccountNo,
			Name:      a.Name,
			Currency:  a.Currency.String(),
			Balance:   a.Balance,
			Closed:    a.Closed,
		})
	}

	writeJSON(w, http.StatusOK, okResponse(views))
}
