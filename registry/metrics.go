package registry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for dispatch and fetch counters.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeNotFound = "not_found"
)

// registryMetrics contains Prometheus metrics for registry operations.
type registryMetrics struct {
	dispatchTotal *prometheus.CounterVec
	fetchTotal    *prometheus.CounterVec
	notFoundTotal *prometheus.CounterVec
	matchDuration *prometheus.HistogramVec
}

var (
	registryMetricsInstance *registryMetrics
	registryMetricsOnce     sync.Once
)

// getRegistryMetrics returns the singleton registry metrics instance.
func getRegistryMetrics() *registryMetrics {
	registryMetricsOnce.Do(func() {
		registryMetricsInstance = &registryMetrics{
			dispatchTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxgate",
					Subsystem: "registry",
					Name:      "dispatch_total",
					Help:      "Total number of action dispatches by outcome",
				},
				[]string{"outcome"},
			),
			fetchTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxgate",
					Subsystem: "registry",
					Name:      "fetch_total",
					Help:      "Total number of store fetches by outcome",
				},
				[]string{"outcome"},
			),
			notFoundTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxgate",
					Subsystem: "registry",
					Name:      "not_found_total",
					Help:      "Total number of failed path resolutions by handler kind",
				},
				[]string{"kind"},
			),
			matchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "fluxgate",
					Subsystem: "registry",
					Name:      "match_duration_seconds",
					Help:      "Time spent resolving a path against the registry",
					Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
				},
				[]string{"kind"},
			),
		}
	})
	return registryMetricsInstance
}
