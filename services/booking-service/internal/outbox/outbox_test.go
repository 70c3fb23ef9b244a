package outbox

import (
	"context"
	"testing"

	"github.com/md-rashed-zaman/barberbook/libs/kafkax"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestToMessage(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	rec := Record{
		ID: 7,
		Event: Event{
			EventID:     "evt-1",
			EventType:   TopicAppointmentCreated,
			AggregateID: "appt-1",
			ShopID:      "shop-1",
			Payload:     []byte(`{"appointmentId":"appt-1"}`),
		},
		Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	}

	msg := ToMessage(context.Background(), rec)
	if msg.Topic != TopicAppointmentCreated || string(msg.Key) != "shop-1" {
		t.Fatalf("unexpected routing: topic=%s key=%s", msg.Topic, msg.Key)
	}
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.ShopID != "shop-1" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if kafkax.HeaderValue(msg.Headers, "traceparent") != rec.Traceparent {
		t.Fatalf("trace context not carried: %v", msg.Headers)
	}
}
