package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "storefront"
	metricsSubsystem = "kafka"
)

var consumerLabels = []string{"topic", "consumer_group"}

var (
	// ConsumerMessagesReceived counts messages fetched from the broker.
	ConsumerMessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "consumer_messages_received_total",
		Help:      "Kafka messages fetched from the broker.",
	}, consumerLabels)

	// ConsumerMessagesProcessed counts messages whose handler succeeded.
	ConsumerMessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "consumer_messages_processed_total",
		Help:      "Kafka messages handled successfully.",
	}, consumerLabels)

	// ConsumerMessagesFailed counts messages that exhausted their retries.
	ConsumerMessagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "consumer_messages_failed_total",
		Help:      "Kafka messages that failed every handler attempt.",
	}, consumerLabels)

	// ConsumerMessagesDuplicate counts messages skipped by IdempotentHandler.
	ConsumerMessagesDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "consumer_messages_duplicate_total",
		Help:      "Kafka messages skipped because their event id was already handled.",
	}, consumerLabels)

	// ConsumerDLQPublished counts messages sent to a dead-letter topic.
	ConsumerDLQPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "consumer_dlq_published_total",
		Help:      "Kafka messages published to a dead-letter topic.",
	}, consumerLabels)

	// ConsumerProcessingDuration observes time spent in the handler, retries included.
	ConsumerProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "consumer_processing_duration_seconds",
		Help:      "Kafka message handling time in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, consumerLabels)

	// ProducerMessagesPublished counts successful publishes.
	ProducerMessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "producer_messages_published_total",
		Help:      "Kafka messages published.",
	}, []string{"topic"})

	// ProducerPublishErrors counts failed publishes.
	ProducerPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "producer_publish_errors_total",
		Help:      "Kafka publish failures.",
	}, []string{"topic"})

	// ProducerPublishDuration observes publish latency.
	ProducerPublishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "producer_publish_duration_seconds",
		Help:      "Kafka publish latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
)
