package batchauth

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchAcceptedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "batchauth",
		Name:      "batch_verified_counter",
		Help:      "The total number of batch frames that passed verification",
	})

	batchRejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "batchauth",
		Name:      "batch_rejected_counter",
		Help:      "The total number of rejected batch frames by reason",
	}, []string{"reason"})

	whitelistSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_da",
		Subsystem: "batchauth",
		Name:      "whitelist_size",
		Help:      "The number of whitelisted verifying keys",
	})

	whitelistReloadCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "batchauth",
		Name:      "whitelist_reload_counter",
		Help:      "The total number of whitelist hot reloads",
	})
)

func init() {
	prometheus.MustRegister(batchAcceptedCounter)
	prometheus.MustRegister(batchRejectedCounter)
	prometheus.MustRegister(whitelistSizeGauge)
	prometheus.MustRegister(whitelistReloadCounter)
}
