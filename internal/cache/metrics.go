package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_refreshes_total",
		Help: "Total number of cache refresh fetches against the bridge",
	}, []string{"cache"})
	refreshFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_refresh_failures_total",
		Help: "Total number of cache refresh fetches that failed",
	}, []string{"cache"})
	gatedSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_gated_skips_total",
		Help: "Total number of fetches skipped because no usable session exists",
	}, []string{"cache"})
)
