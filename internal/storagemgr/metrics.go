package storagemgr

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	kvCacheHitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "storage",
		Name:      "kv_cache_hit_counter",
		Help:      "The total number of kv cache hit",
	})

	kvCacheMissCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "storage",
		Name:      "kv_cache_miss_counter",
		Help:      "The total number of kv cache miss",
	})

	lruCacheHitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "storage",
		Name:      "lru_cache_hit_counter",
		Help:      "The total number of in-memory object cache hit",
	}, []string{"cache"})

	lruCacheMissCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_da",
		Subsystem: "storage",
		Name:      "lru_cache_miss_counter",
		Help:      "The total number of in-memory object cache miss",
	}, []string{"cache"})
)

func init() {
	prometheus.MustRegister(kvCacheHitCounter)
	prometheus.MustRegister(kvCacheMissCounter)
	prometheus.MustRegister(lruCacheHitCounter)
	prometheus.MustRegister(lruCacheMissCounter)
}
