// Package metrics holds the Prometheus collectors of the settlement core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BundlesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_bundles_submitted_total",
			Help: "Bundles accepted by the relayer",
		},
		[]string{"kind"},
	)

	PaymentsTerminal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_payments_terminal_total",
			Help: "Payments that reached a terminal state",
		},
		[]string{"status", "code"},
	)

	PollAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_poll_attempts_total",
			Help: "Bundle status checks by outcome",
		},
		[]string{"outcome"},
	)

	RelayerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_relayer_request_duration_seconds",
			Help:    "Relayer request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	ScheduledTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settlement_scheduled_tasks",
		Help: "Tasks waiting in the scheduler",
	})

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_events_published_total",
			Help: "Payment events published, by result",
		},
		[]string{"result"},
	)
)
