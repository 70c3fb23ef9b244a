package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/md-rashed-zaman/barberbook/libs/kafkax"
	"github.com/md-rashed-zaman/barberbook/services/notification-service/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type memStore struct {
	seen    map[string]bool
	records []storage.Notification
	err     error
}

func (m *memStore) Seen(_ context.Context, id string) (bool, error) {
	return m.seen[id], m.err
}

func (m *memStore) Record(_ context.Context, n storage.Notification) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen[n.EventID] {
		return false, nil
	}
	m.seen[n.EventID] = true
	m.records = append(m.records, n)
	return true, nil
}

type recordingSender struct {
	to, body string
	calls    int
	err      error
}

func (s *recordingSender) Send(_ context.Context, to, body string) error {
	s.calls++
	s.to, s.body = to, body
	return s.err
}

func (s *recordingSender) ProviderID() string { return "test" }

func event(id, payload string) kafka.Message {
	return kafka.Message{
		Topic:   "booking.appointment.created.v1",
		Headers: kafkax.EventMeta{EventID: id, EventType: "booking.appointment.created.v1", ShopID: "shop-1"}.Headers(),
		Value:   []byte(payload),
	}
}

func newNotifier(store *memStore, sender *recordingSender) *Notifier {
	return New(store, sender, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
}

func TestHandleSendsOnceAndDedupes(t *testing.T) {
	store := &memStore{seen: map[string]bool{}}
	sender := &recordingSender{}
	n := newNotifier(store, sender)

	msg := event("evt-1", `{"appointmentId":"a1","shopId":"shop-1","shopPhone":"11999990000","message":"Novo agendamento"}`)
	if err := n.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := n.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle duplicate: %v", err)
	}
	if sender.calls != 1 || sender.to != "11999990000" || sender.body != "Novo agendamento" {
		t.Fatalf("unexpected send %+v", sender)
	}
	if len(store.records) != 1 || store.records[0].Status != StatusSent {
		t.Fatalf("unexpected records %+v", store.records)
	}
	if got := testutil.ToFloat64(n.sent.WithLabelValues(StatusSent)); got != 1 {
		t.Fatalf("sent counter = %v", got)
	}
}

func TestHandleRecordsFailuresAndSkips(t *testing.T) {
	store := &memStore{seen: map[string]bool{}}
	sender := &recordingSender{err: errors.New("gateway down")}
	n := newNotifier(store, sender)

	_ = n.Handle(context.Background(), event("evt-1", `{"appointmentId":"a1","shopPhone":"1199","message":"m"}`))
	_ = n.Handle(context.Background(), event("evt-2", `{"appointmentId":"a2","message":"m"}`))

	if len(store.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(store.records))
	}
	if r := store.records[0]; r.Status != StatusFailed || r.Error != "gateway down" || r.ShopID != "shop-1" {
		t.Fatalf("unexpected failed record %+v", r)
	}
	if r := store.records[1]; r.Status != StatusSkipped {
		t.Fatalf("unexpected skipped record %+v", r)
	}
	if sender.calls != 1 {
		t.Fatalf("sender called %d times", sender.calls)
	}
}

func TestHandleDropsMalformedAndRetriesStoreErrors(t *testing.T) {
	store := &memStore{seen: map[string]bool{}}
	n := newNotifier(store, &recordingSender{})

	if err := n.Handle(context.Background(), event("evt-1", `not json`)); err != nil {
		t.Fatalf("malformed payload should be dropped, got %v", err)
	}
	store.err = errors.New("db down")
	if err := n.Handle(context.Background(), event("evt-2", `{"appointmentId":"a2"}`)); err == nil {
		t.Fatal("expected store error to be returned")
	}
}
