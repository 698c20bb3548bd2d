// Package metrics exposes Prometheus counters for gameplay events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taleforge"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Play sessions started, by story",
		},
		[]string{"story"},
	)

	ChoicesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "story",
			Name:      "choices_total",
			Help:      "Choices attempted, by result (advanced or refused)",
		},
		[]string{"result"},
	)

	CombatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "combat",
			Name:      "finished_total",
			Help:      "Finished fights, by outcome",
		},
		[]string{"outcome"},
	)

	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "level_ups_total",
		Help:      "Levels gained",
	})

	Deaths = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "deaths_total",
		Help:      "Characters that died",
	})

	SaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "save_failures_total",
		Help:      "Saves that failed to reach the durable store",
	})

	StoreFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "fallbacks_total",
		Help:      "Times the durable store could not be opened and memory was used instead",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
