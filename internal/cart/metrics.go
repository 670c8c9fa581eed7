package cart

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp      = "op"
	labelOutcome = "outcome"
	labelService = "service"

	serviceStock   = "stock"
	serviceCatalog = "catalog"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Lookups    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "minicart",
				Name:      "cart_operations_total",
				Help:      "Cart operations by outcome",
			},
			[]string{labelOp, labelOutcome},
		),
		Lookups: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "minicart",
				Name:      "cart_lookup_duration_seconds",
				Help:      "Catalog and stock lookup latency",
			},
			[]string{labelService},
		),
	}

	reg.MustRegister(m.Operations, m.Lookups)
	return m
}

func (m *Metrics) observeOp(op Op, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(string(op), outcome(err)).Inc()
}

func (m *Metrics) observeLookup(service string, start time.Time) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
