package auth

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce     sync.Once
	decisionCounter *prometheus.CounterVec
	cacheCounter    *prometheus.CounterVec
	mutationCounter *prometheus.CounterVec
)

// initMetrics registers the engine collectors once per process.
func initMetrics() {
	metricsOnce.Do(func() {
		decisionCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_decisions_total",
				Help: "Number of permission decisions, by result.",
			},
			[]string{"result"},
		)

		cacheCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_matrix_cache_total",
				Help: "Matrix cache lookups, by result.",
			},
			[]string{"result"},
		)

		mutationCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_mutations_total",
				Help: "Administrative access mutations, by action and outcome.",
			},
			[]string{"action", "outcome"},
		)
	})
}

func countDecision(granted bool, err error) {
	switch {
	case err != nil:
		decisionCounter.WithLabelValues("error").Inc()
	case granted:
		decisionCounter.WithLabelValues("granted").Inc()
	default:
		decisionCounter.WithLabelValues("denied").Inc()
	}
}

func cacheLookups(hit bool) {
	if hit {
		cacheCounter.WithLabelValues("hit").Inc()
		return
	}

	cacheCounter.WithLabelValues("miss").Inc()
}

func countMutation(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}

	mutationCounter.WithLabelValues(action, outcome).Inc()
}
