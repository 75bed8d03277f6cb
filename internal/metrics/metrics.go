package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluation metrics
	EvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "silowatch_evaluations_total",
			Help: "Total number of snapshot evaluations",
		},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "silowatch_evaluation_duration_seconds",
			Help:    "Time taken to evaluate one snapshot pair",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)

	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silowatch_notifications_emitted_total",
			Help: "Total number of notifications emitted by the evaluator",
		},
		[]string{"kind"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silowatch_notifications_suppressed_total",
			Help: "Total number of notifications suppressed by cooldown",
		},
		[]string{"kind"},
	)

	SilosMonitored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "silowatch_silos_monitored",
			Help: "Number of silos in the latest snapshot",
		},
	)

	// Toast metrics
	ToastsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silowatch_toasts_shown_total",
			Help: "Total number of toasts displayed",
		},
		[]string{"category"},
	)

	ToastsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "silowatch_toasts_deduplicated_total",
			Help: "Total number of toasts dropped as recent duplicates",
		},
	)

	ToastsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "silowatch_toasts_active",
			Help: "Current number of displayed toasts",
		},
	)

	// Outbound channel metrics
	ChannelSendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silowatch_channel_send_total",
			Help: "Total number of outbound channel deliveries",
		},
		[]string{"channel", "status"}, // status: success, failed, skipped
	)
)
