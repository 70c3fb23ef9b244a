package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
	"github.com/shopspring/decimal"
)

func validForm() Form {
	return Form{Name: "João Silva", Phone: "(11) 91234-5678", Date: "2026-03-02", Time: "14:00"}
}

func (f *fixture) cartWith(t *testing.T, shopID string, serviceIDs ...string) string {
	t.Helper()
	ctx := context.Background()
	sess, err := f.svc.NewCart(ctx, shopID)
	if err != nil {
		t.Fatalf("NewCart: %v", err)
	}
	for _, id := range serviceIDs {
		if _, err := f.svc.AddItem(ctx, sess.ID, id); err != nil {
			t.Fatalf("AddItem(%s): %v", id, err)
		}
	}
	return sess.ID
}

func TestCheckoutOpenShopCreatesPendingAppointment(t *testing.T) {
	f := newFixture(SlotPolicy{})
	ctx := context.Background()
	cartID := f.cartWith(t, "T", "S1", "S2", "S2")

	sess, err := f.svc.Cart(ctx, cartID)
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if !sess.Cart.Total().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected cart total 70, got %s", sess.Cart.Total())
	}

	receipt, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: cartID, Form: validForm()})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	a := receipt.Appointment
	if a.Status != model.StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}
	if !a.Total.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected total 70, got %s", a.Total)
	}
	if len(a.Services) != 2 ||
		a.Services[0].ServiceID != "S1" || a.Services[0].Quantity != 1 ||
		a.Services[1].ServiceID != "S2" || a.Services[1].Quantity != 2 {
		t.Fatalf("unexpected services: %+v", a.Services)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}
	if len(f.store.appts) != 1 {
		t.Fatalf("expected one stored appointment, got %d", len(f.store.appts))
	}

	if _, err := f.svc.Cart(ctx, cartID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected cart to be cleared, got %v", err)
	}
	if f.metrics.created != 1 {
		t.Fatalf("expected created metric")
	}

	if len(f.store.events) != 1 || f.store.events[0].EventType != outbox.TopicAppointmentCreated {
		t.Fatalf("expected one created event, got %+v", f.store.events)
	}
	var evt AppointmentCreated
	if err := json.Unmarshal(f.store.events[0].Payload, &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.ShopPhone != "(11) 98888-7777" || evt.AppointmentID != a.ID || evt.Message != receipt.Message {
		t.Fatalf("unexpected event payload: %+v", evt)
	}

	if !strings.HasPrefix(receipt.NotificationURL, "https://wa.me/5511988887777/?text=") {
		t.Fatalf("unexpected notification url: %s", receipt.NotificationURL)
	}
}

func TestCheckoutClosedShopTouchesNothing(t *testing.T) {
	f := newFixture(SlotPolicy{})
	cartID := f.cartWith(t, "closed", "C1")

	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{CartID: cartID, Form: validForm()})
	if !errors.Is(err, ErrShopClosed) {
		t.Fatalf("expected ErrShopClosed, got %v", err)
	}
	if f.store.slotQueries != 0 || f.store.createCalls != 0 {
		t.Fatalf("closed shop must not reach the appointment store (queries=%d creates=%d)", f.store.slotQueries, f.store.createCalls)
	}
	if _, err := f.svc.Cart(context.Background(), cartID); err != nil {
		t.Fatalf("cart should survive a rejected checkout: %v", err)
	}
	if f.metrics.closed != 1 {
		t.Fatalf("expected closed metric")
	}
}

func TestCheckoutClosedBeatsInvalidForm(t *testing.T) {
	f := newFixture(SlotPolicy{})
	cartID := f.cartWith(t, "closed")

	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{CartID: cartID, Form: Form{}})
	if !errors.Is(err, ErrShopClosed) {
		t.Fatalf("expected ErrShopClosed first, got %v", err)
	}
}

func TestCheckoutSlotConflict(t *testing.T) {
	f := newFixture(SlotPolicy{})
	ctx := context.Background()

	if _, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: f.cartWith(t, "T", "S1"), Form: validForm()}); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	creates := f.store.createCalls

	second := f.cartWith(t, "T", "S2")
	_, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: second, Form: validForm()})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if f.store.createCalls != creates {
		t.Fatalf("guard must reject before any write")
	}
	if _, err := f.svc.Cart(ctx, second); err != nil {
		t.Fatalf("cart should survive a conflict: %v", err)
	}

	later := validForm()
	later.Time = "14:30"
	if _, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: second, Form: later}); err != nil {
		t.Fatalf("half an hour later should succeed: %v", err)
	}
	if f.metrics.conflicts != 1 || f.metrics.created != 2 {
		t.Fatalf("unexpected metrics: %+v", f.metrics)
	}
}

func TestCancelledSlotPolicy(t *testing.T) {
	for _, tc := range []struct {
		name    string
		policy  SlotPolicy
		wantErr error
	}{
		{name: "blocked by default", policy: SlotPolicy{}, wantErr: ErrSlotTaken},
		{name: "released when configured", policy: SlotPolicy{ReleaseCancelled: true}, wantErr: nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.policy)
			ctx := context.Background()

			r, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: f.cartWith(t, "T", "S1"), Form: validForm()})
			if err != nil {
				t.Fatalf("first checkout: %v", err)
			}
			if _, err := f.svc.SetStatus(ctx, "T", r.Appointment.ID, "cancelled"); err != nil {
				t.Fatalf("cancel: %v", err)
			}

			_, err = f.svc.Checkout(ctx, CheckoutRequest{CartID: f.cartWith(t, "T", "S2"), Form: validForm()})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGuardFailureIsNeverAvailable(t *testing.T) {
	f := newFixture(SlotPolicy{})
	cartID := f.cartWith(t, "T", "S1")
	f.store.occupiedErr = errors.New("connection reset")

	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{CartID: cartID, Form: validForm()})
	if err == nil || errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if f.store.createCalls != 0 {
		t.Fatalf("no write may follow a failed guard")
	}
	if _, err := f.svc.Cart(context.Background(), cartID); err != nil {
		t.Fatalf("cart should be untouched: %v", err)
	}

	if free, err := f.svc.Guard().Available(context.Background(), "T", "2026-03-02", "14:00"); err == nil || free {
		t.Fatalf("Available must report the error, got free=%v err=%v", free, err)
	}
}

func TestCheckoutStoreRaceMapsToSlotTaken(t *testing.T) {
	f := newFixture(SlotPolicy{})
	f.store.createErr = model.ErrSlotTaken

	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{CartID: f.cartWith(t, "T", "S1"), Form: validForm()})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestConcurrentCheckoutsOneWinner(t *testing.T) {
	f := newFixture(SlotPolicy{})
	const n = 8
	carts := make([]string, n)
	for i := range carts {
		carts[i] = f.cartWith(t, "T", "S1")
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range carts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(context.Background(), CheckoutRequest{CartID: carts[i], Form: validForm()})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || len(f.store.appts) != 1 {
		t.Fatalf("expected exactly one booking, got %d wins and %d rows", wins, len(f.store.appts))
	}
}

func TestCheckoutValidationAggregatesFields(t *testing.T) {
	f := newFixture(SlotPolicy{})
	cartID := f.cartWith(t, "T")

	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{CartID: cartID, Form: Form{
		Name: "   ", Phone: "11912345678", Date: "2026-03-01", Time: "09:15",
	}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "phone", "date", "time", "cart"} {
		if verr.Fields[field] == "" {
			t.Fatalf("expected %s to be rejected: %+v", field, verr.Fields)
		}
	}
	if f.store.slotQueries != 0 {
		t.Fatalf("invalid form must not query slots")
	}
	if f.metrics.invalid != 1 {
		t.Fatalf("expected validation metric")
	}
}

func TestCartErrors(t *testing.T) {
	f := newFixture(SlotPolicy{})
	ctx := context.Background()

	if _, err := f.svc.NewCart(ctx, "nope"); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "missing", "S1"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	cartID := f.cartWith(t, "T")
	if _, err := f.svc.AddItem(ctx, cartID, "C1"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("service of another shop must not be addable, got %v", err)
	}
	if _, err := f.svc.DecrementItem(ctx, cartID, "S1"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound on empty cart, got %v", err)
	}
	if _, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: "missing", Form: validForm()}); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	f := newFixture(SlotPolicy{})
	cartID := f.cartWith(t, "T", "S1")

	svc := f.dir.services["S1"]
	svc.Price = decimal.NewFromInt(99)
	f.dir.services["S1"] = svc

	sess, err := f.svc.AddItem(context.Background(), cartID, "S1")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !sess.Cart.Total().Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected captured price to be kept, total %s", sess.Cart.Total())
	}
}

func TestSlotsMarksTakenAndPast(t *testing.T) {
	f := newFixture(SlotPolicy{})
	ctx := context.Background()
	if _, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: f.cartWith(t, "T", "S1"), Form: validForm()}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	slots, err := f.svc.Slots(ctx, "T", "2026-03-02")
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	avail := map[string]bool{}
	for _, s := range slots {
		avail[s.Time] = s.Available
	}
	if avail["10:00"] || !avail["10:30"] {
		t.Fatalf("10:00 has passed and 10:30 has not (now is 10:15)")
	}
	if avail["14:00"] {
		t.Fatalf("14:00 is booked")
	}

	if _, err := f.svc.Slots(ctx, "T", "02/03/2026"); err == nil {
		t.Fatalf("expected bad date to be rejected")
	}
}

func TestAdminAppointments(t *testing.T) {
	f := newFixture(SlotPolicy{})
	ctx := context.Background()
	book := func(name, phone, date, tm string) model.Appointment {
		form := Form{Name: name, Phone: phone, Date: date, Time: tm}
		r, err := f.svc.Checkout(ctx, CheckoutRequest{CartID: f.cartWith(t, "T", "S1"), Form: form})
		if err != nil {
			t.Fatalf("checkout %s: %v", name, err)
		}
		return r.Appointment
	}
	b := book("Bruno", "(21) 99999-0000", "2026-03-03", "09:00")
	a := book("Ana Souza", "(11) 91234-5678", "2026-03-02", "16:00")
	book("Carlos", "(11) 4444-5555", "2026-03-02", "11:00")

	all, err := f.svc.Appointments(ctx, "T", Filter{})
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if len(all) != 3 || all[0].Time != "11:00" || all[1].ID != a.ID || all[2].ID != b.ID {
		t.Fatalf("expected date then time order, got %+v", all)
	}

	byName, _ := f.svc.Appointments(ctx, "T", Filter{Query: "ana"})
	if len(byName) != 1 || byName[0].ID != a.ID {
		t.Fatalf("name search failed: %+v", byName)
	}
	byPhone, _ := f.svc.Appointments(ctx, "T", Filter{Query: "99999"})
	if len(byPhone) != 1 || byPhone[0].ID != b.ID {
		t.Fatalf("phone search failed: %+v", byPhone)
	}

	if _, err := f.svc.SetStatus(ctx, "T", b.ID, "confirmed"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	confirmed, _ := f.svc.Appointments(ctx, "T", Filter{Status: model.StatusConfirmed})
	if len(confirmed) != 1 || confirmed[0].ID != b.ID {
		t.Fatalf("status filter failed: %+v", confirmed)
	}
	if _, err := f.svc.SetStatus(ctx, "T", b.ID, "done"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, "other", b.ID, "confirmed"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("other tenant must not see the appointment, got %v", err)
	}

	if err := f.svc.DeleteAppointment(ctx, "T", a.ID); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if err := f.svc.DeleteAppointment(ctx, "T", a.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := ParseFilter("all", "", " ana "); err != nil || f.Status != "" || f.Query != "ana" {
		t.Fatalf("unexpected %+v %v", f, err)
	}
	if _, err := ParseFilter("archived", "", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestAvailabilityChecksGridAndGuard(t *testing.T) {
	f := newFixture(SlotPolicy{})
	ctx := context.Background()
	f.store.appts = append(f.store.appts, model.Appointment{ID: "a1", ShopID: "T", Date: "2026-03-02", Time: "14:00", Status: model.StatusPending})

	free, err := f.svc.Availability(ctx, "T", "2026-03-02", "14:00")
	if err != nil || free {
		t.Fatalf("expected 14:00 taken, got free=%v err=%v", free, err)
	}
	free, err = f.svc.Availability(ctx, "T", "2026-03-02", "14:30")
	if err != nil || !free {
		t.Fatalf("expected 14:30 free, got free=%v err=%v", free, err)
	}

	var verr *ValidationError
	if _, err := f.svc.Availability(ctx, "T", "2026-03-02", "14:15"); !errors.As(err, &verr) || verr.Fields["time"] == "" {
		t.Fatalf("expected time validation error, got %v", err)
	}
	if _, err := f.svc.Availability(ctx, "missing", "2026-03-02", "14:30"); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}
