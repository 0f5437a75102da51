package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_stage_transitions_total",
			Help: "Total number of application stage moves",
		},
		[]string{"from", "to"},
	)

	ActivitiesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_activities_total",
			Help: "Total number of activity rows written",
		},
		[]string{"type"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"template", "result"},
	)

	ResumeScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ats_resume_scores",
			Help:    "Distribution of resume match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
