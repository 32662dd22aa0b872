package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_poll_ticks_total",
		Help: "Total number of session status poll ticks",
	})
	pollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_poll_failures_total",
		Help: "Total number of session status poll transport failures",
	})
	phaseChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_phase_changes_total",
		Help: "Total number of connection phase transitions",
	}, []string{"phase"})
)
