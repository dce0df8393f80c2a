package aggregate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Requests         *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	LimiterFailOpen  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_aggregate_requests_total",
			Help: "Facade operations by operation, source and outcome",
		}, []string{"operation", "source", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contentgw_aggregate_upstream_duration_seconds",
			Help:    "Time spent in adapter calls on cache misses",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8, 15},
		}, []string{"operation", "source"}),
		LimiterFailOpen: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_aggregate_limiter_fail_open_total",
			Help: "Admissions granted because the limiter store failed",
		}, []string{"policy"}),
	}
}

func (m *Metrics) observeOutcome(operation, source string, outcome Outcome) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, source, string(outcome)).Inc()
}

func (m *Metrics) observeUpstream(operation, source string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(operation, source).Observe(d.Seconds())
}

func (m *Metrics) incrementFailOpen(policy string) {
	if m == nil {
		return
	}
	m.LimiterFailOpen.WithLabelValues(policy).Inc()
}
