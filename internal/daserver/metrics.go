package daserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	subscriberGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "daserver",
		Name:      "subscribers",
		Help:      "The number of live block stream subscribers",
	})

	streamGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "daserver",
		Name:      "streams",
		Help:      "The number of open block streams",
	})

	prunedSubscriberCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daserver",
		Name:      "pruned_subscriber_counter",
		Help:      "The total number of subscribers dropped on a failed send",
	})

	heartbeatSentCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daserver",
		Name:      "heartbeat_sent_counter",
		Help:      "The total number of heartbeat broadcasts",
	})

	replayedBlockCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daserver",
		Name:      "replayed_block_counter",
		Help:      "The total number of blocks served from storage",
	})

	batchWriteCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daserver",
		Name:      "batch_write_counter",
		Help:      "The total number of batch writes by answer",
	}, []string{"answer"})
)

func init() {
	prometheus.MustRegister(subscriberGauge)
	prometheus.MustRegister(streamGauge)
	prometheus.MustRegister(prunedSubscriberCounter)
	prometheus.MustRegister(heartbeatSentCounter)
	prometheus.MustRegister(replayedBlockCounter)
	prometheus.MustRegister(batchWriteCounter)
}
