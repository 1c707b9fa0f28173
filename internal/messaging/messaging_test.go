package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/domain"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs      []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func withTracing(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func TestProducer_PublishOrderRelayed(t *testing.T) {
	withTracing(t)

	t.Run("writes event keyed by order id with trace headers", func(t *testing.T) {
		writer := &fakeWriter{}
		producer := &Producer{writer: writer, topic: "order.relayed"}

		event := domain.OrderRelayedEvent{
			EventID:   "evt-1",
			OrderID:   "A1",
			ItemCount: 2,
			Total:     "20",
			SID:       "SM0001",
			Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		}
		if err := producer.PublishOrderRelayed(context.Background(), event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(writer.msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(writer.msgs))
		}
		msg := writer.msgs[0]
		if string(msg.Key) != "A1" {
			t.Errorf("expected key A1, got %s", msg.Key)
		}

		var got domain.OrderRelayedEvent
		if err := json.Unmarshal(msg.Value, &got); err != nil {
			t.Fatalf("failed to decode message: %v", err)
		}
		if !got.Timestamp.Equal(event.Timestamp) {
			t.Errorf("expected timestamp %s, got %s", event.Timestamp, got.Timestamp)
		}
		got.Timestamp = event.Timestamp
		if got != event {
			t.Errorf("expected %+v, got %+v", event, got)
		}

		if NewHeaderCarrier(&msg).Get("traceparent") == "" {
			t.Error("expected traceparent header to be injected")
		}
	})

	t.Run("returns writer errors", func(t *testing.T) {
		producer := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, topic: "order.relayed"}
		if err := producer.PublishOrderRelayed(context.Background(), domain.OrderRelayedEvent{OrderID: "A1"}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestConsumer_Consume(t *testing.T) {
	withTracing(t)

	t.Run("continues the producer trace and commits handled messages", func(t *testing.T) {
		writer := &fakeWriter{}
		producer := &Producer{writer: writer, topic: "order.relayed"}

		ctx, span := otel.Tracer("test").Start(context.Background(), "parent")
		if err := producer.Publish(ctx, "A1", map[string]string{"order_id": "A1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		span.End()

		reader := &fakeReader{msgs: writer.msgs}
		consumer := &Consumer{reader: reader, topic: "order.relayed", groupID: "audit"}

		var traceID trace.TraceID
		var payloads []string
		err := consumer.Consume(context.Background(), func(ctx context.Context, payload []byte) error {
			traceID = trace.SpanContextFromContext(ctx).TraceID()
			payloads = append(payloads, string(payload))
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}

		if len(payloads) != 1 || payloads[0] != `{"order_id":"A1"}` {
			t.Errorf("unexpected payloads %v", payloads)
		}
		if traceID != span.SpanContext().TraceID() {
			t.Errorf("expected trace %s, got %s", span.SpanContext().TraceID(), traceID)
		}
		if len(reader.committed) != 1 {
			t.Errorf("expected 1 committed message, got %d", len(reader.committed))
		}
	})

	t.Run("stops without committing when handler fails", func(t *testing.T) {
		reader := &fakeReader{msgs: []kafka.Message{{Value: []byte(`{}`)}, {Value: []byte(`{}`)}}}
		consumer := &Consumer{reader: reader, topic: "order.relayed", groupID: "audit"}

		handlerErr := errors.New("boom")
		err := consumer.Consume(context.Background(), func(context.Context, []byte) error { return handlerErr })
		if !errors.Is(err, handlerErr) {
			t.Fatalf("expected handler error, got %v", err)
		}
		if len(reader.committed) != 0 {
			t.Errorf("expected no commits, got %d", len(reader.committed))
		}
	})
}

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{}
	carrier := NewHeaderCarrier(&msg)

	carrier.Set("traceparent", "a")
	carrier.Set("baggage", "b")
	carrier.Set("traceparent", "c")

	if carrier.Get("traceparent") != "c" {
		t.Errorf("expected overwritten value, got %q", carrier.Get("traceparent"))
	}
	if carrier.Get("missing") != "" {
		t.Error("expected empty value for missing key")
	}
	if keys := carrier.Keys(); len(keys) != 2 {
		t.Errorf("expected 2 keys, got %v", keys)
	}
}
