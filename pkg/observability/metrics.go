// Package observability exports Prometheus metrics for machine dispatches.
// Metrics are labelled by machine name so one process can serve several
// machines against the default registry.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/detentlabs/detent/pkg/fsm"
)

var (
	namespace = "detent"

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of dispatches by outcome",
		},
		[]string{"machine", "outcome"},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of completed transitions by edge",
		},
		[]string{"machine", "from", "to"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Total number of failed dispatches by failure code",
		},
		[]string{"machine", "code"},
	)

	dispatchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_errors_total",
			Help:      "Total number of errors surfaced to dispatch error listeners",
		},
		[]string{"machine"},
	)

	dispatchSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch latency, including guard, action and listener time",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"machine"},
	)
)

// ObserveResult records the outcome of one dispatch.
func ObserveResult[S comparable](machine string, res fsm.Result[S]) {
	dispatchTotal.WithLabelValues(machine, res.Outcome.String()).Inc()
	if res.Failed() && res.Debug != nil {
		failuresTotal.WithLabelValues(machine, res.Debug.Code).Inc()
	}
}

// ObserveDuration records the wall-clock duration of one dispatch.
func ObserveDuration(machine string, d time.Duration) {
	dispatchSeconds.WithLabelValues(machine).Observe(d.Seconds())
}

// Listener returns a machine listener that records transition edges and
// dispatch errors. Attach it via the builder or ConfigSpec.Listeners.
func Listener[S comparable, E comparable, C any](machine string) fsm.Listener[S, E, C] {
	return fsm.Listener[S, E, C]{
		OnTransition: func(t fsm.Transition[S, E], _ C) {
			transitionsTotal.WithLabelValues(machine, fmt.Sprint(t.From), fmt.Sprint(t.To)).Inc()
		},
		OnDispatchError: func(S, E, C, error) {
			dispatchErrorsTotal.WithLabelValues(machine).Inc()
		},
	}
}

// GetDispatchCounter returns the dispatch counter for testing.
// Production code should use ObserveResult instead.
func GetDispatchCounter() *prometheus.CounterVec {
	return dispatchTotal
}

// GetTransitionsCounter returns the transitions counter for testing.
// Production code should attach Listener instead.
func GetTransitionsCounter() *prometheus.CounterVec {
	return transitionsTotal
}
