package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
)

// Filter narrows the admin appointment list. An empty Status means all.
type Filter struct {
	Status model.Status
	Date   string
	Query  string
}

// ParseFilter accepts status "all" or empty as no status filter.
func ParseFilter(status, date, query string) (Filter, error) {
	f := Filter{Date: strings.TrimSpace(date), Query: strings.TrimSpace(query)}
	if status == "" || status == "all" {
		return f, nil
	}
	st, ok := model.ParseStatus(status)
	if !ok {
		return Filter{}, ErrInvalidStatus
	}
	f.Status = st
	return f, nil
}

// Matches applies the free text search: a case-insensitive substring of the
// client name, or a substring of the phone.
func (f Filter) Matches(a model.Appointment) bool {
	if f.Query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(a.ClientName), strings.ToLower(f.Query)) {
		return true
	}
	return strings.Contains(a.ClientPhone, f.Query)
}

// Appointments lists a shop's appointments by date then time.
func (s *Service) Appointments(ctx context.Context, shopID string, f Filter) ([]model.Appointment, error) {
	list, err := s.store.List(ctx, shopID, f.Status, f.Date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	out := list[:0]
	for _, a := range list {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

type StatusChanged struct {
	AppointmentID string       `json:"appointmentId"`
	ShopID        string       `json:"shopId"`
	Status        model.Status `json:"status"`
	ChangedAt     time.Time    `json:"changedAt"`
}

// SetStatus overwrites the status. Reviving a cancelled appointment whose
// slot was rebooked fails with ErrSlotTaken.
func (s *Service) SetStatus(ctx context.Context, shopID, id, status string) (model.Appointment, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return model.Appointment{}, ErrInvalidStatus
	}
	now := s.now().UTC()
	payload, err := json.Marshal(StatusChanged{AppointmentID: id, ShopID: shopID, Status: st, ChangedAt: now})
	if err != nil {
		return model.Appointment{}, fmt.Errorf("encode event: %w", err)
	}
	evt := outbox.Event{
		EventID:     s.newID(),
		EventType:   outbox.TopicAppointmentStatusChanged,
		AggregateID: id,
		ShopID:      shopID,
		Payload:     payload,
	}

	a, err := s.store.UpdateStatus(ctx, shopID, id, st, now, evt)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.Appointment{}, ErrAppointmentNotFound
	case errors.Is(err, model.ErrSlotTaken):
		return model.Appointment{}, ErrSlotTaken
	case err != nil:
		return model.Appointment{}, fmt.Errorf("update status: %w", err)
	}
	return a, nil
}

// DeleteAppointment is irreversible; callers must have confirmed it.
func (s *Service) DeleteAppointment(ctx context.Context, shopID, id string) error {
	err := s.store.Delete(ctx, shopID, id)
	if errors.Is(err, model.ErrNotFound) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
