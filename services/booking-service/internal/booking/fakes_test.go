package booking

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/cart"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
	"github.com/shopspring/decimal"
)

type fakeDirectory struct {
	shops    map[string]model.Shop
	services map[string]model.Service
	err      error
}

func (d *fakeDirectory) GetShop(_ context.Context, shopID string) (model.Shop, error) {
	if d.err != nil {
		return model.Shop{}, d.err
	}
	s, ok := d.shops[shopID]
	if !ok {
		return model.Shop{}, model.ErrNotFound
	}
	return s, nil
}

func (d *fakeDirectory) ListServices(_ context.Context, shopID string) ([]model.Service, error) {
	var out []model.Service
	for _, s := range d.services {
		if s.ShopID == shopID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *fakeDirectory) GetService(_ context.Context, shopID, serviceID string) (model.Service, error) {
	s, ok := d.services[serviceID]
	if !ok || s.ShopID != shopID {
		return model.Service{}, model.ErrNotFound
	}
	return s, nil
}

// fakeStore serializes writes under one mutex, which is what the advisory lock
// provides per slot in Postgres.
type fakeStore struct {
	mu          sync.Mutex
	appts       []model.Appointment
	events      []outbox.Event
	occupiedErr error
	createErr   error
	slotQueries int
	createCalls int
}

func (s *fakeStore) occupied(shopID, date, tm string, includeCancelled bool) bool {
	for _, a := range s.appts {
		if a.ShopID == shopID && a.Date == date && a.Time == tm {
			if includeCancelled || a.Status != model.StatusCancelled {
				return true
			}
		}
	}
	return false
}

func (s *fakeStore) Occupied(_ context.Context, shopID, date, tm string, includeCancelled bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotQueries++
	if s.occupiedErr != nil {
		return false, s.occupiedErr
	}
	return s.occupied(shopID, date, tm, includeCancelled), nil
}

func (s *fakeStore) TakenTimes(_ context.Context, shopID, date string, includeCancelled bool) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotQueries++
	if s.occupiedErr != nil {
		return nil, s.occupiedErr
	}
	out := map[string]bool{}
	for _, a := range s.appts {
		if a.ShopID == shopID && a.Date == date && (includeCancelled || a.Status != model.StatusCancelled) {
			out[a.Time] = true
		}
	}
	return out, nil
}

func (s *fakeStore) CreateIfSlotFree(_ context.Context, a model.Appointment, includeCancelled bool, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	if s.occupied(a.ShopID, a.Date, a.Time, includeCancelled) {
		return model.ErrSlotTaken
	}
	s.appts = append(s.appts, a)
	s.events = append(s.events, events...)
	return nil
}

func (s *fakeStore) List(_ context.Context, shopID string, status model.Status, date string) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, a := range s.appts {
		if a.ShopID != shopID || (status != "" && a.Status != status) || (date != "" && a.Date != date) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, shopID, id string, status model.Status, now time.Time, events ...outbox.Event) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.appts {
		if a.ShopID == shopID && a.ID == id {
			s.appts[i].Status = status
			s.appts[i].UpdatedAt = now
			s.events = append(s.events, events...)
			return s.appts[i], nil
		}
	}
	return model.Appointment{}, model.ErrNotFound
}

func (s *fakeStore) Delete(_ context.Context, shopID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.appts {
		if a.ShopID == shopID && a.ID == id {
			s.appts = append(s.appts[:i], s.appts[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

type countingRecorder struct {
	mu        sync.Mutex
	created   int
	conflicts int
	closed    int
	invalid   int
}

func (r *countingRecorder) Created()          { r.mu.Lock(); r.created++; r.mu.Unlock() }
func (r *countingRecorder) Conflict()         { r.mu.Lock(); r.conflicts++; r.mu.Unlock() }
func (r *countingRecorder) ShopClosed()       { r.mu.Lock(); r.closed++; r.mu.Unlock() }
func (r *countingRecorder) ValidationFailed() { r.mu.Lock(); r.invalid++; r.mu.Unlock() }

var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}()

type fixture struct {
	svc     *Service
	dir     *fakeDirectory
	store   *fakeStore
	carts   *cart.MemoryStore
	metrics *countingRecorder
	now     time.Time
}

func newFixture(policy SlotPolicy) *fixture {
	grid, err := availability.NewGrid("08:00", "20:00", 30*time.Minute)
	if err != nil {
		panic(err)
	}
	f := &fixture{
		dir: &fakeDirectory{
			shops: map[string]model.Shop{
				"T":      {ID: "T", Name: "Navalha de Ouro", Phone: "(11) 98888-7777", IsOpen: true},
				"closed": {ID: "closed", Name: "Fechada", Phone: "(11) 3333-4444", IsOpen: false},
			},
			services: map[string]model.Service{
				"S1": {ID: "S1", ShopID: "T", Name: "Corte", Price: decimal.NewFromInt(30), DurationMinutes: 30},
				"S2": {ID: "S2", ShopID: "T", Name: "Barba", Price: decimal.NewFromInt(20), DurationMinutes: 20},
				"C1": {ID: "C1", ShopID: "closed", Name: "Corte", Price: decimal.NewFromInt(25), DurationMinutes: 30},
			},
		},
		store:   &fakeStore{},
		carts:   cart.NewMemoryStore(time.Hour),
		metrics: &countingRecorder{},
		now:     time.Date(2026, 3, 2, 10, 15, 0, 0, saoPaulo),
	}
	f.svc = NewService(Config{
		Grid:      grid,
		Location:  saoPaulo,
		Policy:    policy,
		Messenger: Messenger{Host: "wa.me", CountryPrefix: "55"},
		Now:       func() time.Time { return f.now },
	}, f.dir, f.store, f.carts, f.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}
