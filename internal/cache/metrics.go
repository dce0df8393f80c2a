package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Lookups *prometheus.CounterVec
	Errors  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_cache_lookups_total",
			Help: "Cache lookups by query type and result (hit, miss, stale)",
		}, []string{"query_type", "result"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_cache_errors_total",
			Help: "Swallowed cache failures by query type and operation",
		}, []string{"query_type", "op"}),
	}
}

func (m *Metrics) observeLookup(queryType, result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(queryType, result).Inc()
}

func (m *Metrics) observeError(queryType, op string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(queryType, op).Inc()
}
