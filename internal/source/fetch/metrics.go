package fetch

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

type Metrics struct {
	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec
}

// NewMetrics registers the outbound metrics. One instance is shared by all
// clients; the source label tells them apart.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_upstream_requests_total",
			Help: "Outbound requests by source and status (status \"error\" when no reply, \"rejected\" when the breaker is open)",
		}, []string{"source", "status"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contentgw_upstream_request_duration_seconds",
			Help:    "Outbound request latency, excluding the politeness pause",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "contentgw_upstream_breaker_state",
			Help: "Circuit state per source: 0 closed, 1 half-open, 2 open",
		}, []string{"source"}),
	}
}

func (m *Metrics) observeRequest(sourceID string, resp *Response, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "error"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "rejected"
	case resp != nil:
		status = strconv.Itoa(resp.StatusCode)
	}
	m.Requests.WithLabelValues(sourceID, status).Inc()
	if status != "rejected" {
		m.Latency.WithLabelValues(sourceID).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeBreaker(sourceID string, state gobreaker.State) {
	if m == nil {
		return
	}
	var v float64
	switch state {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	m.BreakerState.WithLabelValues(sourceID).Set(v)
}
