package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
)

// InitRegistry creates and installs the process-wide Prometheus registry,
// pre-populated with the standard Go runtime and process collectors.
//
// Call it once at startup, before constructing any metrics implementations.
// Until it is called, IsEnabled reports false and the constructors in the
// prometheus subpackage return nil, which disables collection entirely.
//
// The registry is returned so callers can expose it over HTTP.
func InitRegistry() *prometheus.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// IsEnabled reports whether metrics collection is enabled, i.e. whether
// InitRegistry has been called.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the installed registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}
