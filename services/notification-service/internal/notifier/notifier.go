// Package notifier forwards new bookings to the shop by SMS.
package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/md-rashed-zaman/barberbook/libs/kafkax"
	"github.com/md-rashed-zaman/barberbook/services/notification-service/internal/sms"
	"github.com/md-rashed-zaman/barberbook/services/notification-service/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"

	channelSMS = "sms"
)

type Store interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, n storage.Notification) (bool, error)
}

// appointmentCreated mirrors the booking service's event payload.
type appointmentCreated struct {
	AppointmentID string `json:"appointmentId"`
	ShopID        string `json:"shopId"`
	ShopPhone     string `json:"shopPhone"`
	ClientName    string `json:"clientName"`
	Message       string `json:"message"`
}

type Notifier struct {
	store  Store
	sender sms.Sender
	logger *slog.Logger
	sent   *prometheus.CounterVec
}

func New(store Store, sender sms.Sender, logger *slog.Logger, reg prometheus.Registerer) *Notifier {
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "barberbook",
		Subsystem: "notification",
		Name:      "processed_total",
		Help:      "Appointment notifications by status.",
	}, []string{"status"})
	reg.MustRegister(sent)
	return &Notifier{store: store, sender: sender, logger: logger, sent: sent}
}

// Handle processes one booking.appointment.created event. Malformed payloads
// are dropped; only store failures are returned so the consumer retries.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID == "" {
		n.logger.Error("event without id dropped", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}

	seen, err := n.store.Seen(ctx, meta.EventID)
	if err != nil {
		return err
	}
	if seen {
		n.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		return nil
	}

	var evt appointmentCreated
	if err := json.Unmarshal(msg.Value, &evt); err != nil || evt.AppointmentID == "" {
		n.logger.Error("invalid appointment payload", "event_id", meta.EventID, "err", err)
		return nil
	}
	if evt.ShopID == "" {
		evt.ShopID = meta.ShopID
	}

	rec := storage.Notification{
		EventID:       meta.EventID,
		EventType:     meta.EventType,
		ShopID:        evt.ShopID,
		AppointmentID: evt.AppointmentID,
		Channel:       channelSMS,
		Recipient:     strings.TrimSpace(evt.ShopPhone),
		Status:        StatusSent,
	}
	switch {
	case rec.Recipient == "":
		rec.Status = StatusSkipped
		rec.Error = "shop has no phone"
	default:
		if err := n.sender.Send(ctx, rec.Recipient, evt.Message); err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
			n.logger.Error("sms send failed", "err", err, "shop_id", rec.ShopID, "appointment_id", rec.AppointmentID)
		}
	}

	inserted, err := n.store.Record(ctx, rec)
	if err != nil {
		n.logger.Error("failed to persist notification", "event_id", meta.EventID, "err", err)
		return err
	}
	if !inserted {
		n.logger.Info("event recorded concurrently", "event_id", meta.EventID)
		return nil
	}
	n.sent.WithLabelValues(rec.Status).Inc()
	n.logger.Info("appointment notification processed",
		"appointment_id", rec.AppointmentID,
		"shop_id", rec.ShopID,
		"provider", n.sender.ProviderID(),
		"status", rec.Status,
	)
	return nil
}
