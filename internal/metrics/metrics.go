// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventsphere"

var (
	// RegistrationsTotal counts registration attempts by outcome label
	// ("success" or the rejection kind).
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts by outcome.",
	}, []string{"outcome"})

	SeatsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seats_granted_total",
		Help:      "Seats granted by successful registrations.",
	})

	SeatsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seats_released_total",
		Help:      "Seats released by cancellations.",
	})

	ReviewActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_actions_total",
		Help:      "Admin review actions by resulting status.",
	}, []string{"action", "status"})

	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_transitions_total",
		Help:      "Status repairs applied by lifecycle sync, by new status.",
	}, []string{"status"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_failures_total",
		Help:      "Domain events that could not be published.",
	}, []string{"routing_key"})

	NotificationsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_stored_total",
		Help:      "Notifications written by the worker, by kind.",
	}, []string{"kind"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)
