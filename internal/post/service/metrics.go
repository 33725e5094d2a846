package service

import (
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/observability/metrics"
)

func observeEnrichment(mode string, start time.Time, n int) {
	metrics.EnrichmentDurationSeconds.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.PostsEnriched.Add(float64(n))
}

func incrementIngestionFailure(reason string) {
	metrics.IngestionFailures.WithLabelValues(reason).Inc()
}

func incrementPostsIngested() {
	metrics.PostsIngested.Inc()
}

func incrementExpiredTokensSeen() {
	metrics.ExpiredTokensSeen.Inc()
}

func incrementLikeChange(op string) {
	metrics.LikeChangesTotal.WithLabelValues(op).Inc()
}

func incrementPublishFailed(subject string) {
	metrics.EventsPublishFailed.WithLabelValues(subject).Inc()
}
