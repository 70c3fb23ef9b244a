package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/cart"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
	"github.com/shopspring/decimal"
)

// Directory is the storefront's read access to shops and their catalog.
type Directory interface {
	GetShop(ctx context.Context, shopID string) (model.Shop, error)
	ListServices(ctx context.Context, shopID string) ([]model.Service, error)
	GetService(ctx context.Context, shopID, serviceID string) (model.Service, error)
}

// Store persists appointments. CreateIfSlotFree must re-check occupancy and
// insert atomically, returning model.ErrSlotTaken when the slot is held.
type Store interface {
	SlotReader
	CreateIfSlotFree(ctx context.Context, a model.Appointment, includeCancelled bool, events ...outbox.Event) error
	List(ctx context.Context, shopID string, status model.Status, date string) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, shopID, id string, status model.Status, now time.Time, events ...outbox.Event) (model.Appointment, error)
	Delete(ctx context.Context, shopID, id string) error
}

// Recorder counts booking outcomes.
type Recorder interface {
	Created()
	Conflict()
	ShopClosed()
	ValidationFailed()
}

type nopRecorder struct{}

func (nopRecorder) Created()          {}
func (nopRecorder) Conflict()         {}
func (nopRecorder) ShopClosed()       {}
func (nopRecorder) ValidationFailed() {}

type Config struct {
	Grid      availability.Grid
	Location  *time.Location
	Policy    SlotPolicy
	Messenger Messenger
	Now       func() time.Time
}

type Service struct {
	dir       Directory
	store     Store
	carts     cart.Store
	guard     *Guard
	validator Validator
	messenger Messenger
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(cfg Config, dir Directory, store Store, carts cart.Store, metrics Recorder, logger *slog.Logger) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:       dir,
		store:     store,
		carts:     carts,
		guard:     NewGuard(store, cfg.Policy),
		validator: Validator{Grid: cfg.Grid, Location: cfg.Location, Now: cfg.Now},
		messenger: cfg.Messenger,
		metrics:   metrics,
		logger:    logger,
		now:       cfg.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) Guard() *Guard { return s.guard }

func (s *Service) Shop(ctx context.Context, shopID string) (model.Shop, error) {
	shop, err := s.dir.GetShop(ctx, shopID)
	if err != nil {
		return model.Shop{}, directoryErr(err, ErrShopNotFound, "load shop")
	}
	return shop, nil
}

func (s *Service) Services(ctx context.Context, shopID string) ([]model.Service, error) {
	if _, err := s.Shop(ctx, shopID); err != nil {
		return nil, err
	}
	list, err := s.dir.ListServices(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return list, nil
}

// Slots lays out the day's grid for a shop with taken and past times marked.
func (s *Service) Slots(ctx context.Context, shopID, date string) ([]availability.Slot, error) {
	day, err := time.ParseInLocation(availability.DateLayout, date, s.validator.Location)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"date": "Data inválida"}}
	}
	if _, err := s.Shop(ctx, shopID); err != nil {
		return nil, err
	}
	taken, err := s.guard.Taken(ctx, shopID, date)
	if err != nil {
		return nil, err
	}
	return availability.DaySlots(day, s.validator.Grid, taken, s.now().In(s.validator.Location)), nil
}

// Availability reports whether a single grid time is free for booking.
func (s *Service) Availability(ctx context.Context, shopID, date, tm string) (bool, error) {
	if _, err := time.ParseInLocation(availability.DateLayout, date, s.validator.Location); err != nil {
		return false, &ValidationError{Fields: map[string]string{"date": "Data inválida"}}
	}
	if !s.validator.Grid.Contains(tm) {
		return false, &ValidationError{Fields: map[string]string{"time": "Horário inválido"}}
	}
	if _, err := s.Shop(ctx, shopID); err != nil {
		return false, err
	}
	return s.guard.Available(ctx, shopID, date, tm)
}

func (s *Service) NewCart(ctx context.Context, shopID string) (*cart.Session, error) {
	if _, err := s.Shop(ctx, shopID); err != nil {
		return nil, err
	}
	sess := cart.NewSession(s.newID(), shopID, s.now())
	if err := s.carts.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return sess, nil
}

func (s *Service) Cart(ctx context.Context, cartID string) (*cart.Session, error) {
	sess, err := s.carts.Get(ctx, cartID)
	if errors.Is(err, cart.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return sess, nil
}

// AddItem snapshots the service's current name and price into the cart.
func (s *Service) AddItem(ctx context.Context, cartID, serviceID string) (*cart.Session, error) {
	sess, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	svc, err := s.dir.GetService(ctx, sess.ShopID, serviceID)
	if err != nil {
		return nil, directoryErr(err, ErrServiceNotFound, "load service")
	}
	sess.Cart.Add(cart.Item{ServiceID: svc.ID, Name: svc.Name, Price: svc.Price, Image: svc.Image})
	return sess, s.saveCart(ctx, sess)
}

func (s *Service) DecrementItem(ctx context.Context, cartID, serviceID string) (*cart.Session, error) {
	sess, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !sess.Cart.Decrement(serviceID) {
		return nil, ErrServiceNotFound
	}
	return sess, s.saveCart(ctx, sess)
}

func (s *Service) RemoveItem(ctx context.Context, cartID, serviceID string) (*cart.Session, error) {
	sess, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !sess.Cart.Remove(serviceID) {
		return nil, ErrServiceNotFound
	}
	return sess, s.saveCart(ctx, sess)
}

func (s *Service) saveCart(ctx context.Context, sess *cart.Session) error {
	sess.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, sess); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

type CheckoutRequest struct {
	CartID string
	Form   Form
}

type Receipt struct {
	Appointment     model.Appointment `json:"appointment"`
	Message         string            `json:"message"`
	NotificationURL string            `json:"notificationUrl"`
}

// AppointmentCreated is the payload of the created event.
type AppointmentCreated struct {
	AppointmentID string          `json:"appointmentId"`
	ShopID        string          `json:"shopId"`
	ShopPhone     string          `json:"shopPhone"`
	ClientName    string          `json:"clientName"`
	ClientPhone   string          `json:"clientPhone"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Services      []model.Line    `json:"services"`
	Total         decimal.Decimal `json:"total"`
	Message       string          `json:"message"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Checkout turns a cart into a pending appointment. A closed shop is rejected
// before any appointment lookup. On any failure the cart is left as it was.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (Receipt, error) {
	sess, err := s.Cart(ctx, req.CartID)
	if err != nil {
		return Receipt{}, err
	}
	shop, err := s.Shop(ctx, sess.ShopID)
	if err != nil {
		return Receipt{}, err
	}
	if !shop.IsOpen {
		s.metrics.ShopClosed()
		return Receipt{}, ErrShopClosed
	}

	form := req.Form
	form.Name = strings.TrimSpace(form.Name)
	if verr := s.validator.Validate(form, sess.Cart); verr != nil {
		s.metrics.ValidationFailed()
		return Receipt{}, verr
	}

	free, err := s.guard.Available(ctx, shop.ID, form.Date, form.Time)
	if err != nil {
		return Receipt{}, err
	}
	if !free {
		s.metrics.Conflict()
		return Receipt{}, ErrSlotTaken
	}

	now := s.now().UTC()
	appt := model.Appointment{
		ID:          s.newID(),
		ShopID:      shop.ID,
		ClientName:  form.Name,
		ClientPhone: form.Phone,
		Date:        form.Date,
		Time:        form.Time,
		Services:    snapshot(sess.Cart),
		Total:       sess.Cart.Total(),
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	msg := BookingMessage(appt)

	evt, err := s.createdEvent(appt, shop, msg)
	if err != nil {
		return Receipt{}, err
	}
	if err := s.store.CreateIfSlotFree(ctx, appt, !s.guard.Policy().ReleaseCancelled, evt); err != nil {
		if errors.Is(err, model.ErrSlotTaken) {
			s.metrics.Conflict()
			return Receipt{}, ErrSlotTaken
		}
		return Receipt{}, fmt.Errorf("create appointment: %w", err)
	}
	s.metrics.Created()

	if err := s.carts.Delete(ctx, sess.ID); err != nil {
		s.logger.Warn("cart cleanup failed", "cart_id", sess.ID, "err", err)
	}

	return Receipt{
		Appointment:     appt,
		Message:         msg,
		NotificationURL: s.messenger.URL(shop.Phone, msg),
	}, nil
}

func (s *Service) createdEvent(a model.Appointment, shop model.Shop, msg string) (outbox.Event, error) {
	payload, err := json.Marshal(AppointmentCreated{
		AppointmentID: a.ID,
		ShopID:        a.ShopID,
		ShopPhone:     shop.Phone,
		ClientName:    a.ClientName,
		ClientPhone:   a.ClientPhone,
		Date:          a.Date,
		Time:          a.Time,
		Services:      a.Services,
		Total:         a.Total,
		Message:       msg,
		CreatedAt:     a.CreatedAt,
	})
	if err != nil {
		return outbox.Event{}, fmt.Errorf("encode event: %w", err)
	}
	return outbox.Event{
		EventID:     s.newID(),
		EventType:   outbox.TopicAppointmentCreated,
		AggregateID: a.ID,
		ShopID:      a.ShopID,
		Payload:     payload,
	}, nil
}

func snapshot(c *cart.Cart) []model.Line {
	items := c.Items()
	lines := make([]model.Line, len(items))
	for i, it := range items {
		lines[i] = model.Line{ServiceID: it.ServiceID, Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return lines
}

func directoryErr(err, notFound error, op string) error {
	if errors.Is(err, model.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
