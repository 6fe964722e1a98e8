package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "consumer",
		Name:      "events_processed_total",
		Help:      "GreenPoints events handled and committed.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Handler failures by topic and event type. Each one stops the consumer before the failed event is committed.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenpoints",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Records skipped because they lacked an event type or carried invalid JSON.",
	}, []string{"topic"})

	eventLagGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "greenpoints",
		Subsystem: "consumer",
		Name:      "last_event_timestamp_seconds",
		Help:      "Kafka timestamp of the newest committed event per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, decodeErrorCounter, eventLagGauge)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		eventLagGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
