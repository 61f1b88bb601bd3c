package node

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	executedBlockCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "executed_block_counter",
		Help:      "The total number of executed blocks",
	})

	skippedBlockCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "skipped_block_counter",
		Help:      "The total number of blocks skipped as already executed",
	})

	executeRetryCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "execute_retry_counter",
		Help:      "The total number of block execution retries",
	})

	executeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "execute_duration_seconds",
		Help:      "The time spent executing one block, retries included",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	syncedHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "synced_height",
		Help:      "The last fully executed height",
	})

	finalizedHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "finalized_height",
		Help:      "The highest height accepted by settlement",
	})

	inFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "in_flight_txs",
		Help:      "The number of submitted transactions not executed yet",
	})

	settlementPostCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "settlement_post_counter",
		Help:      "The total number of settlement posts by result",
	}, []string{"result"})

	statePushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "state_push_counter",
		Help:      "The total number of states pushed upstream by result",
	}, []string{"result"})

	revertCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "node",
		Name:      "revert_counter",
		Help:      "The total number of settlement driven reverts",
	})
)

func init() {
	prometheus.MustRegister(executedBlockCounter)
	prometheus.MustRegister(skippedBlockCounter)
	prometheus.MustRegister(executeRetryCounter)
	prometheus.MustRegister(executeDuration)
	prometheus.MustRegister(syncedHeightGauge)
	prometheus.MustRegister(finalizedHeightGauge)
	prometheus.MustRegister(inFlightGauge)
	prometheus.MustRegister(settlementPostCounter)
	prometheus.MustRegister(statePushCounter)
	prometheus.MustRegister(revertCounter)
}
