package sequencer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sealedBlockCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "sequencer",
		Name:      "sealed_block_counter",
		Help:      "The total number of sealed blocks",
	})

	sealedTxCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "sequencer",
		Name:      "sealed_tx_counter",
		Help:      "The total number of transactions sealed into blocks",
	})

	latestHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "sequencer",
		Name:      "latest_height",
		Help:      "The height of the latest sealed block",
	})

	pendingTxGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "sequencer",
		Name:      "pending_txs",
		Help:      "The number of queued transactions",
	})

	stateCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "sequencer",
		Name:      "state_counter",
		Help:      "The total number of reported node states by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(sealedBlockCounter)
	prometheus.MustRegister(sealedTxCounter)
	prometheus.MustRegister(latestHeightGauge)
	prometheus.MustRegister(pendingTxGauge)
	prometheus.MustRegister(stateCounter)
}
