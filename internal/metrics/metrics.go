package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters for the reservation engine. All observer
// methods are nil-safe so tests can pass a nil receiver.
type EngineMetrics struct {
	claimsTotal       *prometheus.CounterVec
	reservationsTotal *prometheus.CounterVec
	regenDatesTotal   *prometheus.CounterVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		claimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingdesk",
			Subsystem: "slots",
			Name:      "claims_total",
			Help:      "Total slot claim attempts",
		}, []string{"result"}),
		reservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingdesk",
			Subsystem: "reservations",
			Name:      "attempts_total",
			Help:      "Total reservation attempts",
		}, []string{"duration", "result"}),
		regenDatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingdesk",
			Subsystem: "regeneration",
			Name:      "dates_total",
			Help:      "Total dates processed by slot regeneration",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.claimsTotal, m.reservationsTotal, m.regenDatesTotal)
	return m
}

func (m *EngineMetrics) ObserveClaim(result string) {
	if m == nil {
		return
	}
	m.claimsTotal.WithLabelValues(result).Inc()
}

func (m *EngineMetrics) ObserveReservation(duration, result string) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(duration, result).Inc()
}

func (m *EngineMetrics) ObserveRegeneration(result string) {
	if m == nil {
		return
	}
	m.regenDatesTotal.WithLabelValues(result).Inc()
}
