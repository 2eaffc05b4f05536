// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageTransitions counts visit stage transition attempts by outcome:
	// accepted, denied, invalid, stale
	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_stage_transitions_total",
			Help: "Visit stage transition attempts by target stage and outcome",
		},
		[]string{"target_stage", "outcome"},
	)

	// WebhookResults counts payment webhook deliveries by outcome:
	// processed, duplicate, unknown_reference, signature_rejected,
	// amount_mismatch, ignored, rejected, error
	WebhookResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_payment_webhooks_total",
			Help: "Payment webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	// NotificationsSent counts outbound notifications by channel and outcome
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_notifications_total",
			Help: "Outbound notifications by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	// QueueDepth tracks the current per-stage queue depth per clinic
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clinic_queue_depth",
			Help: "Current number of visits waiting in each stage",
		},
		[]string{"clinic_id", "stage"},
	)

	// RequestDuration observes HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
