package prometheus

import (
	"time"

	"github.com/marmos91/dittobank/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics is the Prometheus implementation of metrics.ServerMetrics.
type serverMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	drops           *prometheus.CounterVec
	dedupHits       prometheus.Counter
	callbacks       prometheus.Counter
	activeMonitors  prometheus.Gauge
}

// NewServerMetrics creates a new Prometheus-backed ServerMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewServerMetrics() metrics.ServerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &serverMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittobank_requests_total",
				Help: "Total number of executed requests by operation and reply status",
			},
			[]string{"op", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittobank_request_duration_milliseconds",
				Help: "Duration of request execution in milliseconds",
				Buckets: []float64{
					0.05, // 50us - balance queries
					0.1,  // 100us
					0.5,  // 500us
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms - bcrypt hashing on OPEN lands here
					500,  // 500ms
					1000, // 1s
				},
			},
			[]string{"op"},
		),
		drops: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittobank_simulated_drops_total",
				Help: "Total number of datagrams discarded by the loss simulation",
			},
			[]string{"kind"}, // "request", "reply"
		),
		dedupHits: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittobank_dedup_hits_total",
				Help: "Total number of duplicate requests answered from the reply cache",
			},
		),
		callbacks: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittobank_callbacks_sent_total",
				Help: "Total number of callback datagrams sent to registered monitors",
			},
		),
		activeMonitors: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittobank_active_monitors",
				Help: "Current number of registered monitor subscriptions",
			},
		),
	}
}

func (m *serverMetrics) RecordRequest(op string, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(op, status).Inc()
	m.requestDuration.WithLabelValues(op).Observe(duration.Seconds() * 1000)
}

func (m *serverMetrics) RecordDrop(kind string) {
	if m == nil {
		return
	}

	m.drops.WithLabelValues(kind).Inc()
}

func (m *serverMetrics) RecordDedupHit() {
	if m == nil {
		return
	}

	m.dedupHits.Inc()
}

func (m *serverMetrics) RecordCallback() {
	if m == nil {
		return
	}

	m.callbacks.Inc()
}

func (m *serverMetrics) SetActiveMonitors(count int) {
	if m == nil {
		return
	}

	m.activeMonitors.Set(float64(count))
}
