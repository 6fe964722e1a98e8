package events

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of events written to Kafka, labeled by topic and event type.",
	}, []string{"topic", "event_type"})

	publishFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "events",
		Name:      "publish_failed_total",
		Help:      "Number of events that could not be written to Kafka.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(publishedCounter, publishFailedCounter)
}
