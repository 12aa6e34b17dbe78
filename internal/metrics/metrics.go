// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatusChanges counts committed status writes by the operation that made them.
	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_report_status_changes_total",
		Help: "Report status changes committed together with their log entry",
	}, []string{"operation"})

	// PushNotifications counts push deliveries by outcome (success, failure).
	PushNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_push_notifications_total",
		Help: "Push notifications sent to administrators",
	}, []string{"outcome"})

	// ReportEvents counts report events handed to a notification transport.
	ReportEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_report_events_total",
		Help: "Report events handed to the notification transport",
	}, []string{"transport", "result"})

	// HTTPRequests observes request latency by route and status class.
	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "incident_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
