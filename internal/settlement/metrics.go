package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	postCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "settlement",
		Name:      "post_counter",
		Help:      "The total number of posted commitments by result",
	}, []string{"result"})

	eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "settlement",
		Name:      "event_counter",
		Help:      "The total number of received commitment events by kind",
	}, []string{"kind"})

	resubscribeCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "settlement",
		Name:      "resubscribe_counter",
		Help:      "The total number of event resubscriptions",
	})
)

func init() {
	prometheus.MustRegister(postCounter)
	prometheus.MustRegister(eventCounter)
	prometheus.MustRegister(resubscribeCounter)
}
