package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// operationTotal counts SDK operations by name, independent of outcome.
// Transport-level outcomes (retries, refreshes, durations) are reported by
// the httpclient OpenTelemetry meters; this counter exists so Prometheus-only
// deployments still see call volume per resource operation.
var operationTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "flowmastery",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "Number of SDK operations started, by operation name.",
	},
	[]string{"operation"},
)

func observeOperation(name string) {
	operationTotal.WithLabelValues(name).Inc()
}
