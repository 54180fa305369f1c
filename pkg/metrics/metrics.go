package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LiveSessions tracks sessions that have been created and not yet purged.
	LiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidhya_live_sessions",
			Help: "Number of sessions currently held in the store",
		},
	)

	// ConnectedParticipants tracks open event-channel connections.
	ConnectedParticipants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidhya_connected_participants",
			Help: "Number of open realtime connections",
		},
	)

	// EventsBroadcast counts fan-out deliveries by event name.
	EventsBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhya_events_broadcast_total",
			Help: "Total realtime events delivered to participants",
		},
		[]string{"event"},
	)

	// PollVotes counts accepted votes (overwrites included).
	PollVotes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhya_poll_votes_total",
			Help: "Total accepted poll votes",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidhya_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
