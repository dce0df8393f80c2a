package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Admissions   *prometheus.CounterVec
	Denials      *prometheus.CounterVec
	StoreErrors  *prometheus.CounterVec
	SweptWindows prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_ratelimit_admitted_total",
			Help: "Admissions granted per policy",
		}, []string{"policy"}),
		Denials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_ratelimit_denied_total",
			Help: "Admissions denied per policy",
		}, []string{"policy"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgw_ratelimit_store_errors_total",
			Help: "Bucket store failures per policy; the limiter fails open on these",
		}, []string{"policy"}),
		SweptWindows: factory.NewCounter(prometheus.CounterOpts{
			Name: "contentgw_ratelimit_swept_windows_total",
			Help: "Idle windows dropped by the janitor",
		}),
	}
}

func (m *Metrics) IncrementAdmitted(policy string) {
	m.Admissions.WithLabelValues(policy).Inc()
}

func (m *Metrics) IncrementDenied(policy string) {
	m.Denials.WithLabelValues(policy).Inc()
}

func (m *Metrics) IncrementStoreErrors(policy string) {
	m.StoreErrors.WithLabelValues(policy).Inc()
}

func (m *Metrics) AddSwept(n int) {
	m.SweptWindows.Add(float64(n))
}
