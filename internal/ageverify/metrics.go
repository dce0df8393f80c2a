package ageverify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TokensIssued  prometheus.Counter
	Confirmations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "contentgw_ageverify_tokens_issued_total",
			Help: "Verification tokens minted",
		}),
		Confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_ageverify_confirmations_total",
			Help: "Token confirmations by outcome (verified, invalid, expired, storage_error)",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}

func (m *Metrics) IncrementConfirmation(outcome string) {
	if m == nil {
		return
	}
	m.Confirmations.WithLabelValues(outcome).Inc()
}
