// Package observability exposes service-level Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activitiesLoggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "activities",
		Name:      "logged_total",
		Help:      "Number of activities persisted, labeled by activity type.",
	}, []string{"activity_type"})

	pointsAwardedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "activities",
		Name:      "points_awarded_total",
		Help:      "Sum of points awarded across all persisted activities.",
	})

	badgesAwardedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "badges",
		Name:      "awarded_total",
		Help:      "Number of badge records persisted, labeled by badge key.",
	}, []string{"badge_key"})

	storageFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "store",
		Name:      "failures_total",
		Help:      "Number of document store calls that failed, labeled by operation.",
	}, []string{"op"})

	pointsPerActivity = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "greenpoints",
		Subsystem: "activities",
		Name:      "points",
		Help:      "Distribution of points awarded per persisted activity.",
		Buckets:   []float64{5, 10, 15, 25, 50, 100, 250, 500},
	})

	lastActivityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "greenpoints",
		Subsystem: "activities",
		Name:      "last_activity_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recently persisted activity.",
	})
)

func init() {
	prometheus.MustRegister(activitiesLoggedCounter, pointsAwardedCounter, pointsPerActivity, badgesAwardedCounter, storageFailureCounter, lastActivityGauge)
}

// RecordActivityLogged updates counters and the watermark for a persisted activity.
func RecordActivityLogged(activityType string, points int, ts time.Time) {
	activitiesLoggedCounter.WithLabelValues(activityType).Inc()
	pointsAwardedCounter.Add(float64(points))
	pointsPerActivity.Observe(float64(points))
	if ts.IsZero() {
		return
	}
	lastActivityGauge.Set(float64(ts.Unix()))
}

// RecordBadgeAwarded counts a persisted badge.
func RecordBadgeAwarded(badgeKey string) {
	badgesAwardedCounter.WithLabelValues(badgeKey).Inc()
}

// RecordStorageFailure counts a failed store call.
func RecordStorageFailure(op string) {
	storageFailureCounter.WithLabelValues(op).Inc()
}
