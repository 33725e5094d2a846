package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed HTTP requests",
		},
		[]string{"method", "path"},
	)

	FeedRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_requests_in_flight",
			Help: "Number of feed HTTP requests currently being processed",
		},
	)

	FeedRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_request_duration_seconds",
			Help:    "Duration of feed HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	JWTValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jwt_validations_total",
			Help: "Total number of JWT validations by result",
		},
		[]string{"result"},
	)

	PostsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_posts_ingested_total",
			Help: "Total number of posts accepted by the ingestion gateway",
		},
	)

	IngestionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_ingestion_failures_total",
			Help: "Total number of rejected or failed post submissions",
		},
		[]string{"reason"},
	)

	ExpiredTokensSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_expired_tokens_seen_total",
			Help: "Total number of validly signed but expired tokens presented on ingestion",
		},
	)

	PostsEnriched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_posts_enriched_total",
			Help: "Total number of post views assembled",
		},
	)

	EnrichmentDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_enrichment_duration_seconds",
			Help:    "Duration of post enrichment in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	LikeChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_like_changes_total",
			Help: "Total number of like and unlike operations",
		},
		[]string{"op"},
	)

	EventsPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_publish_failed_total",
			Help: "Total number of domain events that could not be published",
		},
		[]string{"subject"},
	)
)
