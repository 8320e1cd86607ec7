// Package metrics holds the Prometheus collectors shared by the promoter
// and dispatcher tick loops, served from the worker's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulesPromoted counts schedules moved from due to enqueued, labeled
	// by outcome ("ok" or "error").
	SchedulesPromoted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lapakkirim_schedules_promoted_total",
		Help: "Total number of schedules promoted into the job queue.",
	}, []string{"outcome"})

	// QueueRowsDispatched counts dispatcher outcomes per job type.
	QueueRowsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lapakkirim_queue_rows_dispatched_total",
		Help: "Total number of queue rows processed by the dispatcher.",
	}, []string{"job_type", "outcome"})

	// ChannelSendDuration measures per-channel adapter send latency.
	ChannelSendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lapakkirim_channel_send_duration_seconds",
		Help:    "Latency of a single channel adapter send.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel", "outcome"})
)
