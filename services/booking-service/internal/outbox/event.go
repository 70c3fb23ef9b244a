package outbox

// Topics published by the booking service. The Kafka topic equals the event type.
const (
	TopicAppointmentCreated       = "booking.appointment.created.v1"
	TopicAppointmentStatusChanged = "booking.appointment.status_changed.v1"
)

// Event is written to outbox_events in the same transaction as the change it describes.
type Event struct {
	EventID     string
	EventType   string
	AggregateID string
	ShopID      string
	Payload     []byte
}
