package replica

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	mirroredBlockCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "replica",
		Name:      "mirrored_block_counter",
		Help:      "The total number of blocks mirrored from upstream",
	})

	mirroredHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "replica",
		Name:      "mirrored_height",
		Help:      "The height of the latest mirrored block",
	})

	forwardCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "replica",
		Name:      "forward_counter",
		Help:      "The total number of forwarded batches by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(mirroredBlockCounter)
	prometheus.MustRegister(mirroredHeightGauge)
	prometheus.MustRegister(forwardCounter)
}
