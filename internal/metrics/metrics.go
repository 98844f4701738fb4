package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_commands_total",
			Help: "Total dispatched commands",
		},
		[]string{"command"},
	)

	ProfilesIdentified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_profiles_identified_total",
			Help: "Total identify calls",
		},
	)

	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_messages_published_total",
			Help: "Total messages published",
		},
		[]string{"kind"}, // "broadcast" or "private"
	)

	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_membership_changes_total",
			Help: "Total channel joins and leaves",
		},
		[]string{"op"},
	)

	MembershipDrift = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_membership_drift_total",
			Help: "Join or leave calls that could not be compensated",
		},
		[]string{"op"},
	)

	FactsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_facts_served_total",
			Help: "Total facts rotated out of the feed",
		},
	)

	WeatherSeeds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_weather_seeds_total",
			Help: "Total weather table regenerations",
		},
	)

	// Infrastructure metrics
	RedisLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
		[]string{"command"},
	)

	RedisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_redis_errors_total",
			Help: "Redis commands that failed for reasons other than a missing key",
		},
		[]string{"command"},
	)
)
