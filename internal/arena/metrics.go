package arena

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts what arenas do. One instance is shared by every arena of a
// process.
type Metrics struct {
	Attacks  prometheus.Counter
	Deaths   prometheus.Counter
	Finished *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnbattle",
			Name:      "attacks_total",
			Help:      "Attacks resolved by arena runners.",
		}),
		Deaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnbattle",
			Name:      "deaths_total",
			Help:      "Characters killed in arena battles.",
		}),
		Finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turnbattle",
			Name:      "battles_finished_total",
			Help:      "Arena battles that reached an outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Attacks, m.Deaths, m.Finished)
	}
	return m
}
