package prometheus

import (
	"testing"
	"time"

	"github.com/marmos91/dittobank/pkg/metrics"
)

func TestNewServerMetrics_DisabledWithoutRegistry(t *testing.T) {
	// Until InitRegistry runs, construction yields nil so callers fall
	// back to the no-op implementation
	if m := NewServerMetrics(); m != nil {
		t.Fatal("Expected nil ServerMetrics before InitRegistry")
	}
}

func TestServerMetrics_RecordsAllSeries(t *testing.T) {
	reg := metrics.InitRegistry()

	m := NewServerMetrics()
	if m == nil {
		t.Fatal("NewServerMetrics returned nil with registry installed")
	}

	m.RecordRequest("DEPOSIT", "OK", 2*time.Millisecond)
	m.RecordRequest("WITHDRAW", "ERR_INSUFFICIENT_FUNDS", 1*time.Millisecond)
	m.RecordDrop(metrics.DropKindRequest)
	m.RecordDrop(metrics.DropKindReply)
	m.RecordDedupHit()
	m.RecordCallback()
	m.SetActiveMonitors(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	want := map[string]bool{
		"dittobank_requests_total":                false,
		"dittobank_request_duration_milliseconds": false,
		"dittobank_simulated_drops_total":         false,
		"dittobank_dedup_hits_total":              false,
		"dittobank_callbacks_sent_total":          false,
		"dittobank_active_monitors":               false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Expected metric %s to be registered", name)
		}
	}
}

func TestServerMetrics_GaugeValue(t *testing.T) {
	reg := metrics.InitRegistry()

	m := NewServerMetrics()
	if m == nil {
		t.Fatal("NewServerMetrics returned nil with registry installed")
	}

	m.SetActiveMonitors(7)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range mfs {
		if mf.GetName() != "dittobank_active_monitors" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if got := metric.GetGauge().GetValue(); got != 7 {
				t.Errorf("Expected active monitors gauge 7, got %v", got)
			}
		}
		return
	}
	t.Error("Expected dittobank_active_monitors metric")
}
