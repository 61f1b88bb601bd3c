package daclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectAttemptCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "connect_attempt_counter",
		Help:      "The total number of connect attempts by result",
	}, []string{"result"})

	blockReceivedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "block_received_counter",
		Help:      "The total number of blocks received from the da stream",
	})

	heartbeatCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "heartbeat_counter",
		Help:      "The total number of heartbeats received from the da stream",
	})

	streamEndCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "stream_end_counter",
		Help:      "The total number of terminated da streams by reason",
	}, []string{"reason"})

	watchdogAlertCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "watchdog_alert_counter",
		Help:      "The total number of heartbeat watchdog alerts",
	})

	batchWriteCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "batch_write_counter",
		Help:      "The total number of batch writes by answer",
	}, []string{"answer"})

	sendStateCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "daclient",
		Name:      "send_state_counter",
		Help:      "The total number of state reports by answer",
	}, []string{"answer"})
)

func init() {
	prometheus.MustRegister(connectAttemptCounter)
	prometheus.MustRegister(blockReceivedCounter)
	prometheus.MustRegister(heartbeatCounter)
	prometheus.MustRegister(streamEndCounter)
	prometheus.MustRegister(watchdogAlertCounter)
	prometheus.MustRegister(batchWriteCounter)
	prometheus.MustRegister(sendStateCounter)
}
