package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreErrCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventregistry",
		Subsystem: "store",
		Name:      "err_count",
		Help:      "Number of failed store calls.",
	}, []string{"driver", "method"})
	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventregistry",
		Subsystem: "store",
		Name:      "duration_seconds",
		Help:      "Duration of store calls.",
	}, []string{"driver", "method"})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventregistry",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of handled HTTP requests.",
	}, []string{"method", "route", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventregistry",
		Subsystem: "http",
		Name:      "duration_seconds",
		Help:      "Duration of HTTP requests.",
	}, []string{"method", "route"})
	RegistryActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventregistry",
		Subsystem: "registry",
		Name:      "actions_total",
		Help:      "Number of state changing registry actions.",
	}, []string{"action"})
)

// ObserveStore records duration and failure of a single store call.
// Usage: defer metrics.ObserveStore("postgres", "GetEvent", time.Now(), &err)
func ObserveStore(driver, method string, started time.Time, err *error) {
	StoreDuration.WithLabelValues(driver, method).Observe(time.Since(started).Seconds())
	if err != nil && *err != nil {
		StoreErrCount.WithLabelValues(driver, method).Inc()
	}
}
