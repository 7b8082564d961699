package kafka

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/utafrali/storefront/pkg/logger"
)

func header(msg kafka.Message, key string) string {
	return headerCarrier{headers: &msg.Headers}.Get(key)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: newTestLogger()}
	topic := "test.producer.publish"

	ctx := logger.WithCorrelationID(context.Background(), "corr-ctx")
	event := mustEvent("storefront.order.placed", "ORD-000001", map[string]string{"k": "v"})

	require.NoError(t, p.Publish(ctx, topic, event))

	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, topic, msgs[0].Topic)
	assert.Equal(t, "ORD-000001", string(msgs[0].Key))
	assert.Equal(t, "storefront.order.placed", header(msgs[0], "event_type"))
	assert.Equal(t, "corr-ctx", header(msgs[0], "correlation_id"))
	assert.Equal(t, "corr-ctx", event.CorrelationID)

	decoded, err := UnmarshalEvent(msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)

	assert.Equal(t, float64(1), testutil.ToFloat64(ProducerMessagesPublished.WithLabelValues(topic)))
}

func TestProducer_Publish_KeepsExplicitCorrelationID(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: newTestLogger()}

	ctx := logger.WithCorrelationID(context.Background(), "corr-ctx")
	event := mustEvent("e", "a", 1).WithCorrelationID("corr-explicit")
	require.NoError(t, p.Publish(ctx, "test.producer.explicit", event))

	assert.Equal(t, "corr-explicit", header(w.written()[0], "correlation_id"))
}

func TestProducer_Publish_Failure(t *testing.T) {
	topic := "test.producer.failure"
	p := &Producer{writer: &fakeWriter{err: errBoom}, logger: newTestLogger()}

	err := p.Publish(context.Background(), topic, mustEvent("e", "a", 1))
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), topic)
	assert.Equal(t, float64(1), testutil.ToFloat64(ProducerPublishErrors.WithLabelValues(topic)))
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTextMapPropagator(prevProp)
	})

	ctx, span := tp.Tracer("test").Start(context.Background(), "checkout")
	defer span.End()

	w := &fakeWriter{}
	p := &Producer{writer: w, logger: newTestLogger()}
	require.NoError(t, p.Publish(ctx, "test.producer.trace", mustEvent("e", "a", 1)))

	traceparent := header(w.written()[0], "traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: newTestLogger()}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	c := headerCarrier{headers: &headers}

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Empty(t, c.Get("missing"))

	c.Set("existing", "v2")
	c.Set("new", "v3")
	assert.Equal(t, "v2", c.Get("existing"))
	assert.Equal(t, []string{"existing", "new"}, c.Keys())
	assert.Len(t, headers, 2)
}
