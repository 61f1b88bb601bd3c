package verifier

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	validateCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "verifier",
		Name:      "validate_counter",
		Help:      "The total number of state validations by result",
	}, []string{"result"})

	recordedStateGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "verifier",
		Name:      "recorded_states",
		Help:      "The number of reported states kept in memory",
	})
)

func init() {
	prometheus.MustRegister(validateCounter)
	prometheus.MustRegister(recordedStateGauge)
}
